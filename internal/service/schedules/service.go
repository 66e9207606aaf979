package schedules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvasko/SBP-AppointmentService/internal/domain"
	scheduleRepo "github.com/dvasko/SBP-AppointmentService/internal/infra/storage/schedule"
	identityClient "github.com/dvasko/SBP-AppointmentService/internal/integrations/identityservice"
	"github.com/dvasko/SBP-AppointmentService/internal/service/schedules/models"
)

// Service сервис управления расписаниями мастеров
type Service struct {
	scheduleRepo   ScheduleRepository
	identityClient IdentityServiceClient
	txManager      TransactionManager
	logger         Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	identityClient IdentityServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:   scheduleRepo,
		identityClient: identityClient,
		txManager:      txManager,
		logger:         logger,
	}
}

// GetSchedule получает недельное расписание мастера
func (s *Service) GetSchedule(ctx context.Context, professionalID int64, actor domain.Actor) (*models.ScheduleResponse, error) {
	s.logger.Info("GetSchedule: fetching schedule for professional=%d, actor=%d", professionalID, actor.ID)

	if professionalID <= 0 {
		return nil, fmt.Errorf("%w: professionalID must be positive", ErrInvalidInput)
	}

	if !actor.CanActOn(professionalID) {
		s.logger.Warn("GetSchedule: access denied for actor=%d to professional=%d", actor.ID, professionalID)
		return nil, ErrForbidden
	}

	schedule, err := s.scheduleRepo.GetByProfessional(ctx, professionalID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetSchedule: professional id=%d has no schedule", professionalID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetSchedule: repository error for professional id=%d: %v", professionalID, err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// ReplaceSchedule целиком заменяет недельное расписание мастера.
// Частичное обновление по дням не поддерживается: клиент всегда
// присылает все семь дней.
func (s *Service) ReplaceSchedule(ctx context.Context, req *models.ReplaceScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("ReplaceSchedule: replacing schedule for professional=%d, actor=%d",
		req.ProfessionalID, req.Actor.ID)

	if req.ProfessionalID <= 0 {
		return nil, fmt.Errorf("%w: professionalID must be positive", ErrInvalidInput)
	}

	if !req.Actor.CanActOn(req.ProfessionalID) {
		s.logger.Warn("ReplaceSchedule: access denied for actor=%d to professional=%d",
			req.Actor.ID, req.ProfessionalID)
		return nil, ErrForbidden
	}

	// Мастер обязан существовать в IdentityService
	if _, err := s.identityClient.GetProfessional(ctx, req.ProfessionalID); err != nil {
		if errors.Is(err, identityClient.ErrProfessionalNotFound) {
			s.logger.Warn("ReplaceSchedule: professional id=%d not found", req.ProfessionalID)
			return nil, ErrProfessionalNotFound
		}
		s.logger.Error("ReplaceSchedule: failed to get professional id=%d: %v", req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: failed to get professional: %v", ErrInternal, err)
	}

	schedule, err := req.ToDomainSchedule()
	if err != nil {
		s.logger.Warn("ReplaceSchedule: invalid schedule payload: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := schedule.Validate(); err != nil {
		s.logger.Warn("ReplaceSchedule: schedule validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.scheduleRepo.Replace(ctx, schedule); err != nil {
		s.logger.Error("ReplaceSchedule: failed to replace schedule for professional id=%d: %v",
			req.ProfessionalID, err)
		return nil, fmt.Errorf("%w: ReplaceSchedule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceSchedule: replaced schedule for professional=%d", req.ProfessionalID)

	stored, err := s.scheduleRepo.GetByProfessional(ctx, req.ProfessionalID)
	if err != nil {
		s.logger.Error("ReplaceSchedule: failed to re-read schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to re-read schedule: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(stored), nil
}

// CreateBlock создает блокировку расписания.
// Пересечение с существующими блокировками того же мастера запрещено,
// проверка выполняется в транзакции с блокировкой строк.
// Уже существующие записи в заблокированном интервале не отменяются.
func (s *Service) CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("CreateBlock: creating block for professional=%d, actor=%d", req.ProfessionalID, req.Actor.ID)

	if !req.Actor.CanActOn(req.ProfessionalID) {
		s.logger.Warn("CreateBlock: access denied for actor=%d to professional=%d",
			req.Actor.ID, req.ProfessionalID)
		return nil, ErrForbidden
	}

	block, err := req.ToDomainBlock()
	if err != nil {
		s.logger.Warn("CreateBlock: invalid block payload: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := block.Validate(); err != nil {
		s.logger.Warn("CreateBlock: block validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var created *domain.ScheduleBlock

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		existing, err := s.scheduleRepo.FindBlocksInRangeForUpdate(
			txCtx, req.ProfessionalID, &block.StartDate, &block.EndDate)
		if err != nil {
			s.logger.Error("CreateBlock: failed to find existing blocks: %v", err)
			return fmt.Errorf("%w: failed to find existing blocks: %v", ErrInternal, err)
		}

		for _, other := range existing {
			if block.Overlaps(other) {
				s.logger.Warn("CreateBlock: block overlaps existing block id=%d", other.ID)
				return ErrBlockOverlap
			}
		}

		created, err = s.scheduleRepo.CreateBlock(txCtx, block)
		if err != nil {
			s.logger.Error("CreateBlock: failed to create block: %v", err)
			return fmt.Errorf("%w: failed to create block: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("CreateBlock: created block id=%d for professional=%d", created.ID, created.ProfessionalID)

	return models.FromDomainBlock(created), nil
}

// ListBlocks получает блокировки мастера, опционально ограниченные периодом
func (s *Service) ListBlocks(ctx context.Context, professionalID int64, from, to *time.Time, actor domain.Actor) (*models.BlockListResponse, error) {
	s.logger.Info("ListBlocks: fetching blocks for professional=%d, actor=%d", professionalID, actor.ID)

	if professionalID <= 0 {
		return nil, fmt.Errorf("%w: professionalID must be positive", ErrInvalidInput)
	}

	if !actor.CanActOn(professionalID) {
		s.logger.Warn("ListBlocks: access denied for actor=%d to professional=%d", actor.ID, professionalID)
		return nil, ErrForbidden
	}

	blocks, err := s.scheduleRepo.FindBlocksInRange(ctx, professionalID, from, to)
	if err != nil {
		s.logger.Error("ListBlocks: repository error for professional id=%d: %v", professionalID, err)
		return nil, fmt.Errorf("%w: ListBlocks - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBlockList(blocks), nil
}

// DeleteBlock удаляет блокировку расписания
func (s *Service) DeleteBlock(ctx context.Context, blockID int64, actor domain.Actor) error {
	s.logger.Info("DeleteBlock: deleting block id=%d, actor=%d", blockID, actor.ID)

	if blockID <= 0 {
		return fmt.Errorf("%w: blockID must be positive", ErrInvalidInput)
	}

	block, err := s.scheduleRepo.GetBlockByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrBlockNotFound) {
			s.logger.Warn("DeleteBlock: block id=%d not found", blockID)
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %v", ErrInternal, err)
	}

	if !actor.CanActOn(block.ProfessionalID) {
		s.logger.Warn("DeleteBlock: access denied for actor=%d to professional=%d",
			actor.ID, block.ProfessionalID)
		return ErrForbidden
	}

	if err := s.scheduleRepo.DeleteBlock(ctx, blockID); err != nil {
		if errors.Is(err, scheduleRepo.ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: failed to delete block id=%d: %v", blockID, err)
		return fmt.Errorf("%w: failed to delete block: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteBlock: deleted block id=%d", blockID)
	return nil
}

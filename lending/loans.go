package lending

import (
	"context"
	"strings"

	"Gin_postgres_redis_av_lending/db"
	"Gin_postgres_redis_av_lending/models"
)

type LoanInput struct {
	ItemID   string `json:"itemId" validate:"required"`
	PersonID string `json:"personId" validate:"required"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// LoanFilter.Status accepts "", "open" or one concrete status.
type LoanFilter struct {
	Status   string
	ItemID   string
	PersonID string
}

// OpenLoan 借出：检查可用与翻转 available 在同一事务内完成
func (s *Service) OpenLoan(ctx context.Context, p Principal, in LoanInput, status models.LoanStatus) (*models.Loan, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	if !status.Open() {
		return nil, fieldError("status", "must be pending or active")
	}
	in.ItemID = strings.TrimSpace(in.ItemID)
	in.PersonID = strings.TrimSpace(in.PersonID)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	l, err := s.repo.OpenLoan(ctx, db.OpenLoanInput{
		ItemID:   in.ItemID,
		PersonID: in.PersonID,
		UserID:   p.UserID,
		Status:   status,
		Notes:    in.Notes,
		At:       s.now(),
	})
	if err != nil {
		s.log.Debug().Err(err).Str("item_id", in.ItemID).Msg("open loan rejected")
		return nil, notFound(err)
	}
	s.log.Info().Str("loan_id", l.ID).Str("item_id", l.ItemID).Str("person_id", l.PersonID).
		Str("status", string(l.Status)).Msg("loan opened")
	return l, nil
}

// RegisterLoan records a hand-over at the counter: the loan starts active.
func (s *Service) RegisterLoan(ctx context.Context, p Principal, in LoanInput) (*models.Loan, error) {
	return s.OpenLoan(ctx, p, in, models.LoanActive)
}

// RequestLoan reserves an item from its page: the loan starts pending.
func (s *Service) RequestLoan(ctx context.Context, p Principal, in LoanInput) (*models.Loan, error) {
	return s.OpenLoan(ctx, p, in, models.LoanPending)
}

func (s *Service) canManageLoan(p Principal, l *models.Loan) error {
	if p.IsAdmin || l.UserID == p.UserID {
		return nil
	}
	return ErrForbidden
}

func (s *Service) transition(ctx context.Context, p Principal, loanID string, decide func(l *models.Loan) (db.LoanChange, error)) (*models.Loan, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	l, err := s.repo.ChangeLoan(ctx, loanID, p.UserID, decide)
	if err != nil {
		if l != nil {
			s.log.Debug().Err(err).Str("loan_id", loanID).Str("status", string(l.Status)).Msg("loan transition rejected")
		}
		return l, notFound(err)
	}
	s.log.Info().Str("loan_id", l.ID).Str("item_id", l.ItemID).Str("status", string(l.Status)).
		Str("actor", p.UserID).Msg("loan transition")
	return l, nil
}

// ActivateLoan pending → active；物品已被占用，不动 available
func (s *Service) ActivateLoan(ctx context.Context, p Principal, loanID string) (*models.Loan, error) {
	return s.transition(ctx, p, loanID, func(l *models.Loan) (db.LoanChange, error) {
		if err := s.canManageLoan(p, l); err != nil {
			return db.LoanChange{}, err
		}
		switch l.Status {
		case models.LoanPending:
			return db.LoanChange{Status: models.LoanActive}, nil
		case models.LoanActive:
			return db.LoanChange{}, ErrLoanNotPending
		}
		return db.LoanChange{}, ErrLoanClosed
	})
}

// ReturnLoan 重复归还返回原 loan 和 ErrAlreadyReturned，不改任何数据
func (s *Service) ReturnLoan(ctx context.Context, p Principal, loanID string) (*models.Loan, error) {
	return s.transition(ctx, p, loanID, func(l *models.Loan) (db.LoanChange, error) {
		switch l.Status {
		case models.LoanReturned:
			return db.LoanChange{}, ErrAlreadyReturned
		case models.LoanCancelled:
			return db.LoanChange{}, ErrLoanClosed
		}
		at := s.now()
		return db.LoanChange{Status: models.LoanReturned, ReturnedAt: &at, ReleaseItem: true}, nil
	})
}

// CancelLoan 取消未结束的借用，不记录归还时间
func (s *Service) CancelLoan(ctx context.Context, p Principal, loanID string) (*models.Loan, error) {
	return s.transition(ctx, p, loanID, func(l *models.Loan) (db.LoanChange, error) {
		if err := s.canManageLoan(p, l); err != nil {
			return db.LoanChange{}, err
		}
		if !l.Status.Open() {
			return db.LoanChange{}, ErrLoanClosed
		}
		return db.LoanChange{Status: models.LoanCancelled, ReleaseItem: true}, nil
	})
}

func (s *Service) GetLoan(ctx context.Context, p Principal, id string) (*models.Loan, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	l, err := s.repo.FindLoanByID(ctx, id)
	return l, notFound(err)
}

func (s *Service) ListLoans(ctx context.Context, p Principal, f LoanFilter) ([]models.Loan, error) {
	if err := p.requireAdmin(); err != nil {
		return nil, err
	}
	if err := checkStatusFilter(f.Status); err != nil {
		return nil, err
	}
	return s.repo.ListLoans(ctx, db.LoansQuery{Status: f.Status, ItemID: f.ItemID, PersonID: f.PersonID})
}

// ListMyLoans 只列出当前用户登记的借用
func (s *Service) ListMyLoans(ctx context.Context, p Principal, status string) ([]models.Loan, error) {
	if err := p.requireUser(); err != nil {
		return nil, err
	}
	if err := checkStatusFilter(status); err != nil {
		return nil, err
	}
	return s.repo.ListLoans(ctx, db.LoansQuery{UserID: p.UserID, Status: status})
}

func checkStatusFilter(status string) error {
	if status == "" || status == "open" || models.LoanStatus(status).Valid() {
		return nil
	}
	return fieldError("status", "must be one of: open pending active returned cancelled")
}

// ListActivity 审计日志，仅管理员
func (s *Service) ListActivity(ctx context.Context, p Principal, subjectID string, limit int) ([]models.ActivityLog, error) {
	if err := p.requireAdmin(); err != nil {
		return nil, err
	}
	return s.repo.ListActivity(ctx, subjectID, limit)
}

package member

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"royalgate-platform/pkg/errutil"
	"royalgate-platform/pkg/repository"
	"royalgate-platform/services/catalog"
	"royalgate-platform/services/ledger"
)

var (
	ErrUsernameTaken = errutil.New(errutil.StatusConflict, "username already registered")
	ErrEmailTaken    = errutil.New(errutil.StatusConflict, "email already registered")
	ErrNotFound      = errutil.New(errutil.StatusNotFound, "member not found")
	ErrAlreadyActive = errutil.New(errutil.StatusConflict, "package already active")
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	members   repository.Repository[Member]
	referrals repository.Repository[Referral]
	ledger    *ledger.Service

	now func() time.Time
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Ledger *ledger.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		members:   repository.ProvideStore[Member](p.DB),
		referrals: repository.ProvideStore[Referral](p.DB),
		ledger:    p.Ledger,

		now: time.Now,
	}
}

type RegisterParams struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Country  string `json:"country"`
	Password string `json:"password" binding:"required,min=6"`
	// Username of the member who referred this one, optional.
	ReferralCode string `json:"referral_code"`
}

// Register creates a member on the free tier with a zero balance. Earning
// stays locked until a package is activated.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*Member, error) {
	if existing, err := s.members.FindOne(ctx, &Member{Username: p.Username}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}
	if existing, err := s.members.FindOne(ctx, &Member{Email: p.Email}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	var referredBy string
	if p.ReferralCode != "" {
		referrer, err := s.members.FindOne(ctx, &Member{Username: p.ReferralCode})
		if err != nil {
			return nil, err
		}
		if referrer != nil {
			referredBy = referrer.ID
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	m := &Member{
		ID:           s.node.Generate().String(),
		FullName:     p.FullName,
		Username:     p.Username,
		Email:        p.Email,
		Phone:        p.Phone,
		Country:      p.Country,
		PasswordHash: string(hash),
		Tier:         catalog.TierPinck,
		ReferredBy:   referredBy,
		DayEpoch:     s.now(),
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, err
	}

	zap.L().Info("member registered", zap.String("member_id", m.ID), zap.String("username", m.Username))
	return m, nil
}

// Activate switches the member to a paid tier. The package price is settled
// out of band, so it is recorded without moving the balance; the signup
// bonus is credited and referral commissions are paid up the chain.
func (s *Service) Activate(ctx context.Context, memberID string, tier catalog.Tier) (*Member, error) {
	if !tier.Valid() || !tier.Earning() {
		return nil, errutil.BadRequest(fmt.Sprintf("tier %q is not activatable", tier))
	}

	m, err := s.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.Tier == tier {
		return nil, ErrAlreadyActive
	}

	pkg := catalog.Get(tier)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ledgerTx := s.ledger.WithTrx(tx)
		membersTx := s.members.WithTrx(tx)

		if _, err := ledgerTx.Record(ctx, m.ID, pkg.Price, ledger.TypeDebit,
			fmt.Sprintf("Account Activation (%s)", pkg.Name), ledger.StatusSuccess); err != nil {
			return err
		}
		if _, err := ledgerTx.Credit(ctx, m.ID,
			pkg.SignupBonus, fmt.Sprintf("Welcome Bonus (%s)", pkg.Name)); err != nil {
			return err
		}
		if err := membersTx.Update(ctx, m.ID, map[string]any{"tier": tier}); err != nil {
			return err
		}

		return s.payReferralCommissions(ctx, tx, m, pkg)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("member activated",
		zap.String("member_id", m.ID),
		zap.String("tier", string(tier)),
		zap.Int64("bonus", pkg.SignupBonus),
	)
	return s.Get(ctx, memberID)
}

// payReferralCommissions walks the referral chain and credits each ancestor
// its ladder share of the activation price.
func (s *Service) payReferralCommissions(ctx context.Context, tx *gorm.DB, m *Member, pkg catalog.Package) error {
	ledgerTx := s.ledger.WithTrx(tx)
	membersTx := s.members.WithTrx(tx)
	referralsTx := s.referrals.WithTrx(tx)

	ancestorID := m.ReferredBy
	for level := 0; level < len(catalog.ReferralRates) && ancestorID != ""; level++ {
		ancestor, err := membersTx.FindOne(ctx, &Member{ID: ancestorID})
		if err != nil {
			return err
		}
		if ancestor == nil {
			break
		}

		commission := int64(float64(pkg.Price) * catalog.ReferralRates[level])
		if commission > 0 {
			if _, err := ledgerTx.Credit(ctx, ancestor.ID, commission,
				fmt.Sprintf("Referral Commission L%d (@%s)", level+1, m.Username)); err != nil {
				return err
			}
		}

		if err := referralsTx.Create(ctx, &Referral{
			ID:         s.node.Generate().String(),
			ReferrerID: ancestor.ID,
			MemberID:   m.ID,
			Level:      level + 1,
		}); err != nil {
			return err
		}

		ancestorID = ancestor.ReferredBy
	}
	return nil
}

// Get returns the member or ErrNotFound.
func (s *Service) Get(ctx context.Context, memberID string) (*Member, error) {
	m, err := s.members.FindOne(ctx, &Member{ID: memberID})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// Team lists everyone the member referred, closest level first.
func (s *Service) Team(ctx context.Context, memberID string) ([]*Referral, error) {
	return s.referrals.Find(ctx, &Referral{ReferrerID: memberID})
}

// List returns all members, for the admin surface.
func (s *Service) List(ctx context.Context) ([]*Member, error) {
	return s.members.Find(ctx, &Member{})
}

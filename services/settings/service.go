package settings

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"royalgate-platform/pkg/errutil"
	"royalgate-platform/pkg/repository"
)

const settingsRowID = 1

// Service holds runtime-adjustable platform policy and the song catalog.
type Service struct {
	db       *gorm.DB
	node     *snowflake.Node
	settings repository.Repository[Settings]
	songs    repository.Repository[Song]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:       p.DB,
		node:     p.Node,
		settings: repository.ProvideStore[Settings](p.DB),
		songs:    repository.ProvideStore[Song](p.DB),
	}
}

// Get returns the policy row, creating it with defaults on first use.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	row, err := s.settings.FindOne(ctx, &Settings{ID: settingsRowID})
	if err != nil {
		return nil, err
	}
	if row != nil {
		return row, nil
	}

	row = &Settings{ID: settingsRowID, WithdrawalOpen: true}
	if err := s.settings.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

type UpdateParams struct {
	WithdrawalOpen    *bool   `json:"withdrawal_open"`
	WithdrawalMessage *string `json:"withdrawal_message"`
	Announcement      *string `json:"announcement"`
}

// Update applies only the fields present in the request.
func (s *Service) Update(ctx context.Context, p UpdateParams) (*Settings, error) {
	if _, err := s.Get(ctx); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if p.WithdrawalOpen != nil {
		updates["withdrawal_open"] = *p.WithdrawalOpen
	}
	if p.WithdrawalMessage != nil {
		updates["withdrawal_message"] = *p.WithdrawalMessage
	}
	if p.Announcement != nil {
		updates["announcement"] = *p.Announcement
	}
	if len(updates) == 0 {
		return nil, errutil.BadRequest("no settings fields to update")
	}

	if err := s.settings.Update(ctx, "1", updates); err != nil {
		return nil, err
	}
	zap.L().Info("settings updated", zap.Any("fields", updates))
	return s.Get(ctx)
}

type AddSongParams struct {
	Title       string `json:"title" binding:"required"`
	Artist      string `json:"artist"`
	URL         string `json:"url" binding:"required"`
	DurationSec int64  `json:"duration_sec" binding:"required,gt=0"`
}

func (s *Service) AddSong(ctx context.Context, p AddSongParams) (*Song, error) {
	song := &Song{
		ID:          s.node.Generate().String(),
		Title:       p.Title,
		Artist:      p.Artist,
		URL:         p.URL,
		DurationSec: p.DurationSec,
	}
	if err := s.songs.Create(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *Service) ListSongs(ctx context.Context) ([]*Song, error) {
	return s.songs.Find(ctx, &Song{})
}

package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"royalgate-platform/internal/config"
	"royalgate-platform/pkg/health"
	"royalgate-platform/pkg/middleware"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/media"
	"royalgate-platform/services/member"
	"royalgate-platform/services/mining"
	"royalgate-platform/services/quiz"
	"royalgate-platform/services/quota"
	"royalgate-platform/services/settings"
	"royalgate-platform/services/withdrawal"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		NewHandler,
		fx.Annotate(NewRouter, fx.As(new(http.Handler))),
	),
)

type RouterParams struct {
	fx.In
	Config  *config.Config
	Handler *Handler
	Health  health.HealthService
}

func NewRouter(p RouterParams) *gin.Engine {
	if p.Config.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Error())

	r.GET("/healthz", p.Health.Liveness)
	r.GET("/readyz", p.Health.Readiness)

	h := p.Handler
	v1 := r.Group("/v1")
	{
		v1.POST("/members", h.Register)
		v1.GET("/settings", h.PublicSettings)
		v1.GET("/songs", h.ListSongs)

		m := v1.Group("/members/:id")
		{
			m.GET("", h.GetMember)
			m.POST("/activate", h.Activate)
			m.GET("/transactions", h.Transactions)
			m.GET("/usage", h.Usage)
			m.GET("/team", h.Team)

			m.POST("/mine/start", h.MineStart)
			m.POST("/mine/claim", h.MineClaim)
			m.GET("/mine/status", h.MineStatus)
			m.POST("/spin", h.Spin)

			m.POST("/media/select", h.MediaSelect)
			m.POST("/media/pause", h.MediaPause)
			m.POST("/media/resume", h.MediaResume)
			m.GET("/media/progress", h.MediaProgress)

			m.GET("/quiz/question", h.QuizQuestion)
			m.POST("/quiz/answer", h.QuizAnswer)

			m.POST("/withdrawals", h.SubmitWithdrawal)
			m.GET("/withdrawals", h.MemberWithdrawals)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/members", h.ListMembers)
			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSettings)
			admin.GET("/withdrawals", h.ListWithdrawals)
			admin.POST("/withdrawals/:id/approve", h.ApproveWithdrawal)
			admin.POST("/withdrawals/:id/reject", h.RejectWithdrawal)
			admin.DELETE("/withdrawals/:id", h.DeleteWithdrawal)
			admin.POST("/songs", h.AddSong)
			admin.POST("/questions", h.AddQuestion)
		}
	}

	return r
}

type HandlerParams struct {
	fx.In
	Members     *member.Service
	Quota       *quota.Service
	Mining      *mining.Service
	Media       *media.Service
	Quiz        *quiz.Service
	Settings    *settings.Service
	Withdrawals *withdrawal.Service
	Ledger      *ledger.Service
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		members:     p.Members,
		quota:       p.Quota,
		mining:      p.Mining,
		media:       p.Media,
		quiz:        p.Quiz,
		settings:    p.Settings,
		withdrawals: p.Withdrawals,
		ledger:      p.Ledger,
	}
}

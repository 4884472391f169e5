package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"royalgate-platform/pkg/errutil"
	"royalgate-platform/services/catalog"
	"royalgate-platform/services/ledger"
	"royalgate-platform/services/media"
	"royalgate-platform/services/member"
	"royalgate-platform/services/mining"
	"royalgate-platform/services/quiz"
	"royalgate-platform/services/quota"
	"royalgate-platform/services/settings"
	"royalgate-platform/services/withdrawal"
)

// Handler binds the service layer to the HTTP routes. All domain errors are
// surfaced through the error middleware.
type Handler struct {
	members     *member.Service
	quota       *quota.Service
	mining      *mining.Service
	media       *media.Service
	quiz        *quiz.Service
	settings    *settings.Service
	withdrawals *withdrawal.Service
	ledger      *ledger.Service
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func badRequest(c *gin.Context, err error) {
	fail(c, errutil.BadRequest(err.Error()))
}

// --- members ---

func (h *Handler) Register(c *gin.Context) {
	var p member.RegisterParams
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.members.Register(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMember(c *gin.Context) {
	m, err := h.members.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	balance, err := h.ledger.Balance(c.Request.Context(), m.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m, "balance": balance})
}

type activateRequest struct {
	Tier catalog.Tier `json:"tier" binding:"required"`
}

func (h *Handler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := h.members.Activate(c.Request.Context(), c.Param("id"), req.Tier)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) Transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.ledger.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}

func (h *Handler) Usage(c *gin.Context) {
	usage, err := h.quota.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

func (h *Handler) Team(c *gin.Context) {
	team, err := h.members.Team(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": team})
}

// --- mining and spin ---

func (h *Handler) MineStart(c *gin.Context) {
	status, err := h.mining.Start(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) MineClaim(c *gin.Context) {
	entry, err := h.mining.Claim(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) MineStatus(c *gin.Context) {
	status, err := h.mining.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *Handler) Spin(c *gin.Context) {
	entry, err := h.mining.Spin(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// --- media ---

type mediaSelectRequest struct {
	MediaID     string `json:"media_id" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	DurationSec int64  `json:"duration_sec" binding:"required,gt=0"`
}

func (h *Handler) MediaSelect(c *gin.Context) {
	var req mediaSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.media.Select(c.Request.Context(), c.Param("id"), req.MediaID, req.Kind, req.DurationSec)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) MediaPause(c *gin.Context) {
	session, err := h.media.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) MediaResume(c *gin.Context) {
	session, err := h.media.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) MediaProgress(c *gin.Context) {
	progress, err := h.media.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// --- quiz ---

func (h *Handler) QuizQuestion(c *gin.Context) {
	q, err := h.quiz.Current(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

type quizAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Choice     *int   `json:"choice" binding:"required"`
}

func (h *Handler) QuizAnswer(c *gin.Context) {
	var req quizAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.quiz.Answer(c.Request.Context(), c.Param("id"), req.QuestionID, *req.Choice)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- withdrawals ---

func (h *Handler) SubmitWithdrawal(c *gin.Context) {
	var p withdrawal.SubmitParams
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	req, err := h.withdrawals.Submit(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) MemberWithdrawals(c *gin.Context) {
	requests, err := h.withdrawals.ListByMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": requests})
}

// --- settings and songs ---

func (h *Handler) PublicSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ListSongs(c *gin.Context) {
	songs, err := h.settings.ListSongs(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"songs": songs})
}

// --- admin ---

func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.members.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *Handler) GetSettings(c *gin.Context) {
	h.PublicSettings(c)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var p settings.UpdateParams
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.settings.Update(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ListWithdrawals(c *gin.Context) {
	requests, err := h.withdrawals.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": requests})
}

func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	req, err := h.withdrawals.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) RejectWithdrawal(c *gin.Context) {
	req, err := h.withdrawals.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) DeleteWithdrawal(c *gin.Context) {
	if err := h.withdrawals.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddSong(c *gin.Context) {
	var p settings.AddSongParams
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	song, err := h.settings.AddSong(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, song)
}

func (h *Handler) AddQuestion(c *gin.Context) {
	var p quiz.AddQuestionParams
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	q, err := h.quiz.AddQuestion(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, q)
}

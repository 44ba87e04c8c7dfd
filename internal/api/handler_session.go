package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"webprint-client/internal/session"
)

type queueRow struct {
	JobID       string `json:"jobId"`
	Name        string `json:"name"`
	PrinterName string `json:"printerName"`
	IsColor     string `json:"isColor"`
	Pages       int    `json:"pages"`
	Price       string `json:"price"`
	Date        string `json:"date"`
}

// sessionView is the session as the renderer shows it.
type sessionView struct {
	Authenticated      bool       `json:"authenticated"`
	Email              string     `json:"email"`
	Loaded             bool       `json:"loaded"`
	Budget             string     `json:"budget"`
	PagesEstimate      int        `json:"pagesEstimate"`
	ColorPagesEstimate int        `json:"colorPagesEstimate"`
	ServiceDown        bool       `json:"serviceDown"`
	LoadingFailed      bool       `json:"loadingFailed"`
	Queue              []queueRow `json:"queue"`
}

func newSessionView(s session.Snapshot) sessionView {
	return newSessionViewAt(s, time.Now())
}

func newSessionViewAt(s session.Snapshot, now time.Time) sessionView {
	v := sessionView{
		Authenticated:      s.Authenticated,
		Email:              s.Email,
		Loaded:             s.IsLoaded(),
		Budget:             s.FormattedPrintBudget(),
		PagesEstimate:      s.PagesEstimate(),
		ColorPagesEstimate: s.ColorPagesEstimate(),
		ServiceDown:        s.ServiceDown,
		LoadingFailed:      s.LoadingFailed,
		Queue:              make([]queueRow, 0, len(s.Queue)),
	}
	for _, q := range s.Queue {
		v.Queue = append(v.Queue, queueRow{
			JobID:       q.JobID,
			Name:        q.Name,
			PrinterName: q.PrinterName,
			IsColor:     q.DisplayIsColor(),
			Pages:       q.DisplayPages(),
			Price:       q.DisplayPrice(),
			Date:        q.DisplayDate(now),
		})
	}
	return v
}

// GetSession handles GET /local/session.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, newSessionViewAt(h.session.Snapshot(), h.now()))
}

type signInRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Secret     string `json:"secret" binding:"required"`
}

// SignIn handles POST /local/session/signin.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, err)
		return
	}
	secret := []byte(req.Secret)
	req.Secret = ""

	if err := h.session.SignIn(c.Request.Context(), req.Identifier, secret); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionViewAt(h.session.Snapshot(), h.now()))
}

// SignOut handles POST /local/session/signout.
func (h *Handler) SignOut(c *gin.Context) {
	if err := h.session.SignOut(c.Request.Context()); err != nil {
		// local state is already cleared; the server session will expire
		c.Error(err)
	}
	c.Status(http.StatusNoContent)
}

// Refresh handles POST /local/session/refresh.
func (h *Handler) Refresh(c *gin.Context) {
	if !h.session.Authenticated() {
		abortWithError(c, errNotSignedIn)
		return
	}
	if err := h.session.Refresh(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionViewAt(h.session.Snapshot(), h.now()))
}

// DeleteJob handles DELETE /local/queue/:job_id.
func (h *Handler) DeleteJob(c *gin.Context) {
	jobID := c.Param("job_id")
	if jobID == "" {
		abortBadRequest(c, errors.New("job id is required"))
		return
	}
	if err := h.session.DeleteJob(c.Request.Context(), jobID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionViewAt(h.session.Snapshot(), h.now()))
}

package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FanchonSora/V-Assistant/internal/auth"
	"github.com/FanchonSora/V-Assistant/internal/dsl"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	user, err := s.deps.Auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	token, err := s.deps.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		s.logger.Error("Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.deps.Auth.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

type chatRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	result, err := s.deps.Dialogue.Handle(c.Request.Context(), currentUserID(c), req.Text)
	if err != nil {
		s.logger.Error("Chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	resp := gin.H{"reply": result.Reply, "kind": result.Kind.String()}
	if len(result.Missing) > 0 {
		resp["missing"] = result.Missing
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleParse(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	intent, err := dsl.Parse(req.Text)
	if err != nil {
		if dsl.IsParseError(err) {
			c.JSON(http.StatusOK, gin.H{"ok": false, "error": dsl.ReasonCannotParse})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "kind": intentKind(intent), "detail": intentDetail(intent)})
}

func intentKind(intent dsl.Intent) string {
	switch intent.(type) {
	case dsl.Greet:
		return "greet"
	case dsl.Introduce:
		return "introduce"
	case dsl.Ask:
		return "ask"
	case dsl.Instruction:
		return "help"
	case dsl.Create:
		return "create"
	case dsl.View:
		return "view"
	case dsl.Delete:
		return "delete"
	case dsl.Modify:
		return "modify"
	case dsl.Confirm:
		return "confirm"
	default:
		return "unknown"
	}
}

func intentDetail(intent dsl.Intent) gin.H {
	switch in := intent.(type) {
	case dsl.Greet:
		return gin.H{"name": in.Name}
	case dsl.Ask:
		return gin.H{"question": in.Question}
	case dsl.Instruction:
		return gin.H{"topic": in.Topic}
	case dsl.Create:
		detail := gin.H{"title": in.Title, "due": in.Due.String()}
		if in.Recurrence != "" {
			detail["recurrence"] = in.Recurrence
		}
		if in.Status != "" {
			detail["status"] = string(in.Status)
		}
		return detail
	case dsl.View:
		if in.DateFilter != nil {
			return gin.H{"date": in.DateFilter.Format(dsl.DateLayout)}
		}
		return gin.H{}
	case dsl.Delete:
		return gin.H{"title": in.TitleRef, "due": in.Due.String()}
	case dsl.Modify:
		return gin.H{"title": in.TitleRef, "due": in.Due.String(), "updates": in.Updates}
	case dsl.Confirm:
		return gin.H{"accepted": in.Accepted}
	default:
		return gin.H{}
	}
}

type taskResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      *string   `json:"date"`
	Time      *string   `json:"time"`
	Rrule     string    `json:"rrule,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toTaskResponse(t *task.Task) taskResponse {
	resp := taskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Rrule:     t.Rrule,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	if t.DueDate != nil {
		date := t.DueDate.Format(dsl.DateLayout)
		resp.Date = &date
	}
	if t.DueTime != nil {
		clock := t.DueTime.String()
		resp.Time = &clock
	}
	return resp
}

func toTaskResponses(tasks []*task.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func (s *Server) handleListTasks(c *gin.Context) {
	var date *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dsl.DateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = &parsed
	}
	tasks, err := s.deps.Tasks.ListTasks(c.Request.Context(), currentUserID(c), date)
	if err != nil {
		s.logger.Error("List tasks failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (s *Server) handleListRange(c *gin.Context) {
	from, err := time.Parse(dsl.DateLayout, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
		return
	}
	to, err := time.Parse(dsl.DateLayout, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
		return
	}
	tasks, err := s.deps.Tasks.ListRange(c.Request.Context(), currentUserID(c), from, to)
	if err != nil {
		s.logger.Error("List range failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

type taskWriteRequest struct {
	Title  *string `json:"title"`
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Rrule  *string `json:"rrule"`
	Status *string `json:"status"`
}

func (r taskWriteRequest) toPatch() (task.Patch, error) {
	var patch task.Patch
	patch.Title = r.Title
	patch.Rrule = r.Rrule
	if r.Status != nil {
		status := task.Status(*r.Status)
		patch.Status = &status
	}
	if r.Date != nil {
		date, err := time.Parse(dsl.DateLayout, *r.Date)
		if err != nil {
			return patch, errors.New("date must be YYYY-MM-DD")
		}
		patch.DueDate = &date
	}
	if r.Time != nil {
		clock, err := time.Parse(dsl.TimeLayout, *r.Time)
		if err != nil {
			return patch, errors.New("time must be HH:MM")
		}
		patch.DueTime = &task.DayTime{Hour: clock.Hour(), Minute: clock.Minute()}
	}
	return patch, nil
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Title == nil || *req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := s.deps.Tasks.NewTask(c.Request.Context(), currentUserID(c), *req.Title, patch)
	if err != nil {
		s.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(created))
}

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.deps.Tasks.GetTask(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		s.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(t))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req taskWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := s.deps.Tasks.UpdateFields(c.Request.Context(), currentUserID(c), c.Param("id"), patch)
	if err != nil {
		s.writeTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(updated))
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.deps.Tasks.RemoveTask(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		s.writeTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) writeTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, task.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Task operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

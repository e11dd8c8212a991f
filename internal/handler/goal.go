package handler

import (
	"net/http"

	"github.com/lifequest/lifequest/internal/ctxkeys"
	"github.com/lifequest/lifequest/internal/service"
)

type GoalHandler struct {
	questService *service.QuestService
}

func NewGoalHandler(questService *service.QuestService) *GoalHandler {
	return &GoalHandler{
		questService: questService,
	}
}

type createGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Generate asks for the first candidate plan in the same call.
	Generate bool `json:"generate"`
}

type reflectRequest struct {
	Text string `json:"text"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req createGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Generate {
		res, err := h.questService.CreateDraft(r.Context(), userID, req.Title, req.Description)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
		return
	}

	goal, err := h.questService.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) Goals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.questService.Goals(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) CompletedGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.questService.CompletedGoals(r.Context(), ctxkeys.UserID(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Goal(w http.ResponseWriter, r *http.Request) {
	detail, err := h.questService.Detail(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.questService.Delete(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *GoalHandler) Generate(w http.ResponseWriter, r *http.Request) {
	res, err := h.questService.GenerateDraft(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GoalHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	res, err := h.questService.RegenerateDraft(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GoalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	detail, err := h.questService.ConfirmDraft(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *GoalHandler) Finish(w http.ResponseWriter, r *http.Request) {
	res, err := h.questService.Finish(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GoalHandler) StartStep(w http.ResponseWriter, r *http.Request) {
	res, err := h.questService.Start(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"), r.PathValue("stepId"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GoalHandler) CompleteStep(w http.ResponseWriter, r *http.Request) {
	res, err := h.questService.Complete(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"), r.PathValue("stepId"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (h *GoalHandler) ReflectStep(w http.ResponseWriter, r *http.Request) {
	var req reflectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.questService.Reflect(r.Context(), ctxkeys.UserID(r.Context()), r.PathValue("id"), r.PathValue("stepId"), req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

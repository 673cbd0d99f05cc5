package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/handcalc/internal/expr"
	"github.com/ayusman/handcalc/internal/voice"
)

type evaluateRequest struct {
	Expression string `json:"expression"`
}

type interpretRequest struct {
	Transcript string `json:"transcript"`
}

type evaluateResponse struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	OK         bool   `json:"ok"`
}

// EvaluateHandler serves POST /api/evaluate. The result is the same
// display text the calculator shows, including evaluation errors.
func EvaluateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := expr.Evaluate(req.Expression)
	if err != nil {
		out = expr.Describe(err)
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Expression: req.Expression, Result: out, OK: err == nil})
}

// InterpretHandler serves POST /api/interpret, running a spoken command
// transcript through the voice parser and the evaluator.
func InterpretHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req interpretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	command, err := voice.Parse(req.Transcript)
	if err != nil {
		if errors.Is(err, voice.ErrUnrecognizedOperation) {
			writeError(w, http.StatusUnprocessableEntity, voice.Describe(err))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out, evalErr := expr.Evaluate(command)
	if evalErr != nil {
		out = expr.Describe(evalErr)
	}
	writeJSON(w, http.StatusOK, evaluateResponse{Expression: command, Result: out, OK: evalErr == nil})
}

package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type lambdaRequest struct {
	Instance    json.RawMessage `json:"instance"`
	TimeLimitMs int64           `json:"timeLimitMs"`
	Seed        int64           `json:"seed"`
	Acceptance  string          `json:"acceptance"`
}

// FunctionURL обслуживает вызов через Lambda Function URL с телом
// {"instance": {...}, "timeLimitMs": n, "seed": n}.
func (h *Handler) FunctionURL(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return h.lambdaResponse(http.StatusBadRequest, Response{Message: "тело не в base64"})
		}
		body = string(decoded)
	}

	var in lambdaRequest
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		return h.lambdaResponse(http.StatusBadRequest, Response{Message: "некорректный JSON: " + err.Error()})
	}
	if len(in.Instance) == 0 {
		return h.lambdaResponse(http.StatusBadRequest, Response{Message: "нет поля instance"})
	}

	req := Request{TimeLimit: h.config.Solver.TimeLimit, Seed: h.config.Solver.Seed, Acceptance: in.Acceptance}
	if in.TimeLimitMs != 0 {
		req.TimeLimit = time.Duration(in.TimeLimitMs) * time.Millisecond
	}
	if in.Seed != 0 {
		req.Seed = in.Seed
	}

	res, err := h.Solve(ctx, in.Instance, req)
	switch {
	case errors.Is(err, ErrBadRequest):
		return h.lambdaResponse(http.StatusBadRequest, Response{Message: err.Error()})
	case err != nil:
		h.logger.Error("внутренняя ошибка", "error", err)
		return h.lambdaResponse(http.StatusInternalServerError, Response{Message: "внутренняя ошибка сервера"})
	}
	return h.lambdaResponse(http.StatusOK, Response{Success: true, Message: "решение найдено", Data: res})
}

func (h *Handler) lambdaResponse(code int, resp Response) (events.LambdaFunctionURLResponse, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return events.LambdaFunctionURLResponse{}, err
	}
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

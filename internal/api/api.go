// Package api exposes the window stacks over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ItsNotGoodName/x-tabstack/internal/build"
	"github.com/ItsNotGoodName/x-tabstack/internal/bus"
	"github.com/ItsNotGoodName/x-tabstack/internal/stack"
	"github.com/ItsNotGoodName/x-tabstack/internal/xwm"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

// Controller is implemented by xwm.Manager.
type Controller interface {
	Stacks(ctx context.Context) ([]xwm.StackInfo, error)
	Focus(ctx context.Context, id uuid.UUID, dir stack.Direction) (bool, error)
	Move(ctx context.Context, id uuid.UUID, dir stack.Direction) (stack.MoveKind, error)
	SetActive(ctx context.Context, id uuid.UUID, index int) error
}

type Handler struct {
	controller Controller
	changes    *bus.Hub[xwm.Changed]
}

func NewHandler(controller Controller, changes *bus.Hub[xwm.Changed]) Handler {
	return Handler{
		controller: controller,
		changes:    changes,
	}
}

func (h Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Get build information",
	}, h.Version)
	huma.Register(api, huma.Operation{
		OperationID: "list-stacks",
		Method:      http.MethodGet,
		Path:        "/api/stacks",
		Summary:     "List stacks",
	}, h.ListStacks)
	huma.Register(api, huma.Operation{
		OperationID: "get-stack",
		Method:      http.MethodGet,
		Path:        "/api/stacks/{stack}",
		Summary:     "Get a stack",
	}, h.GetStack)
	huma.Register(api, huma.Operation{
		OperationID: "focus-stack",
		Method:      http.MethodPost,
		Path:        "/api/stacks/{stack}/focus",
		Summary:     "Move focus inside a stack or to its neighbour",
	}, h.FocusStack)
	huma.Register(api, huma.Operation{
		OperationID: "move-stack",
		Method:      http.MethodPost,
		Path:        "/api/stacks/{stack}/move",
		Summary:     "Move the active tab of a stack",
	}, h.MoveStack)
	huma.Register(api, huma.Operation{
		OperationID: "set-active-tab",
		Method:      http.MethodPost,
		Path:        "/api/stacks/{stack}/active",
		Summary:     "Activate a tab",
	}, h.SetActive)
	huma.Register(api, huma.Operation{
		OperationID: "wait-changes",
		Method:      http.MethodGet,
		Path:        "/api/changes",
		Summary:     "Wait for the next change to the stacks",
	}, h.WaitChanges)
}

type VersionOutput struct {
	Body build.Build
}

func (h Handler) Version(ctx context.Context, input *struct{}) (*VersionOutput, error) {
	return &VersionOutput{Body: build.Current}, nil
}

type StacksOutput struct {
	Body []xwm.StackInfo
}

func (h Handler) ListStacks(ctx context.Context, input *struct{}) (*StacksOutput, error) {
	stacks, err := h.controller.Stacks(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &StacksOutput{Body: stacks}, nil
}

type StackInput struct {
	Stack string `path:"stack" format:"uuid" doc:"Stack ID"`
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, huma.Error422UnprocessableEntity("invalid stack id", err)
	}
	return id, nil
}

type StackOutput struct {
	Body xwm.StackInfo
}

func (h Handler) GetStack(ctx context.Context, input *StackInput) (*StackOutput, error) {
	id, err := parseID(input.Stack)
	if err != nil {
		return nil, err
	}

	stacks, err := h.controller.Stacks(ctx)
	if err != nil {
		return nil, toHumaError(err)
	}
	for _, s := range stacks {
		if s.ID == id {
			return &StackOutput{Body: s}, nil
		}
	}
	return nil, huma.Error404NotFound("stack not found")
}

type DirectionInput struct {
	Stack string `path:"stack" format:"uuid" doc:"Stack ID"`
	Body struct {
		Direction string `json:"direction" enum:"left,right,up,down,in,out" doc:"Direction to move in"`
	}
}

type FocusOutput struct {
	Body struct {
		Handled bool `json:"handled"`
	}
}

func (h Handler) FocusStack(ctx context.Context, input *DirectionInput) (*FocusOutput, error) {
	id, dir, err := input.parse()
	if err != nil {
		return nil, err
	}

	handled, err := h.controller.Focus(ctx, id, dir)
	if err != nil {
		return nil, toHumaError(err)
	}

	res := &FocusOutput{}
	res.Body.Handled = handled
	return res, nil
}

type MoveOutput struct {
	Body struct {
		Result string `json:"result" enum:"not-applicable,handled,ejected"`
	}
}

func (h Handler) MoveStack(ctx context.Context, input *DirectionInput) (*MoveOutput, error) {
	id, dir, err := input.parse()
	if err != nil {
		return nil, err
	}

	kind, err := h.controller.Move(ctx, id, dir)
	if err != nil {
		return nil, toHumaError(err)
	}

	res := &MoveOutput{}
	res.Body.Result = kind.String()
	return res, nil
}

func (i DirectionInput) parse() (uuid.UUID, stack.Direction, error) {
	id, err := parseID(i.Stack)
	if err != nil {
		return uuid.UUID{}, 0, err
	}
	dir, err := stack.ParseDirection(i.Body.Direction)
	if err != nil {
		return uuid.UUID{}, 0, huma.Error422UnprocessableEntity("invalid direction", err)
	}
	return id, dir, nil
}

type ActiveInput struct {
	Stack string `path:"stack" format:"uuid" doc:"Stack ID"`
	Body struct {
		Index int `json:"index" minimum:"0" doc:"Tab index"`
	}
}

func (h Handler) SetActive(ctx context.Context, input *ActiveInput) (*struct{}, error) {
	id, err := parseID(input.Stack)
	if err != nil {
		return nil, err
	}

	if err := h.controller.SetActive(ctx, id, input.Body.Index); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

type ChangesInput struct {
	Timeout int `query:"timeout" default:"30" minimum:"1" maximum:"300" doc:"Seconds to wait"`
}

type ChangesOutput struct {
	Status int
	Body   *xwm.Changed
}

// WaitChanges long-polls for the next change. It answers 204 when nothing
// changed before the timeout.
func (h Handler) WaitChanges(ctx context.Context, input *ChangesInput) (*ChangesOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(input.Timeout)*time.Second)
	defer cancel()

	changed, err := h.changes.Next(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return &ChangesOutput{Status: http.StatusNoContent}, nil
		}
		return nil, err
	}

	return &ChangesOutput{Status: http.StatusOK, Body: &changed}, nil
}

func toHumaError(err error) error {
	switch {
	case errors.Is(err, xwm.ErrStackNotFound), errors.Is(err, xwm.ErrTabNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, xwm.ErrNotReady):
		return huma.Error503ServiceUnavailable(err.Error())
	default:
		return err
	}
}

// Package generate dispatches generation requests to the remote service.
package generate

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/doeshing/ytgenius/internal/domain"
	"github.com/doeshing/ytgenius/internal/ports"
)

// Request is the raw user input for one dispatch.
type Request struct {
	Prompt       string
	TaskType     string
	MetadataType string
}

// Service validates a request, attaches the current credential and forwards it
// to the generation client. It never writes history; callers record successful
// outcomes themselves.
type Service struct {
	Credentials ports.CredentialProvider
	Client      ports.GenerationClient
	Logger      ports.Logger
	Now         func() time.Time

	inFlight atomic.Bool
}

// Submit sends one request. Every failure is a *domain.GenerationError.
func (s *Service) Submit(ctx context.Context, req Request) (domain.GenerationOutcome, error) {
	if s.Credentials == nil || s.Client == nil || s.Logger == nil {
		return domain.GenerationOutcome{}, errors.New("generate.Service dependencies not satisfied")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	genReq, err := buildRequest(req)
	if err != nil {
		return domain.GenerationOutcome{}, err
	}

	if !s.inFlight.CompareAndSwap(false, true) {
		return domain.GenerationOutcome{}, domain.NewGenerationError(domain.ErrBusy, "")
	}
	defer s.inFlight.Store(false)

	session, err := s.Credentials.CurrentSession(ctx)
	if err != nil {
		s.Logger.Warn("session lookup failed", map[string]interface{}{"error": err.Error()})
		return domain.GenerationOutcome{}, domain.WrapGenerationError(err, domain.ErrUnauthenticated, "Please sign in first")
	}
	if !session.Usable(s.now()) {
		return domain.GenerationOutcome{}, domain.NewGenerationError(domain.ErrUnauthenticated, "")
	}

	s.Logger.Info("dispatching generation request", map[string]interface{}{
		"task":     genReq.TaskType,
		"sub_type": genReq.SubTypeLabel(),
	})

	outcome, err := s.Client.Generate(ctx, session.AccessToken, genReq)
	if err != nil {
		return domain.GenerationOutcome{}, classify(err)
	}

	s.Logger.Debug("generation succeeded", map[string]interface{}{
		"task":       genReq.TaskType,
		"coins_left": outcome.CoinsLeft,
		"request_id": outcome.RequestID,
	})
	return outcome, nil
}

// InFlight reports whether a submit is currently running.
func (s *Service) InFlight() bool {
	return s.inFlight.Load()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func buildRequest(req Request) (domain.GenerationRequest, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return domain.GenerationRequest{}, domain.NewGenerationError(domain.ErrEmptyInput, "")
	}

	task, err := domain.ParseTaskTag(req.TaskType)
	if err != nil {
		return domain.GenerationRequest{}, domain.WrapGenerationError(err, domain.ErrInvalidRequest, "Unknown task type")
	}

	genReq := domain.GenerationRequest{Prompt: req.Prompt, TaskType: task}
	if task == domain.TaskMetadata {
		sub, err := domain.ParseMetadataSubType(req.MetadataType)
		if err != nil {
			return domain.GenerationRequest{}, domain.WrapGenerationError(err, domain.ErrInvalidRequest, "Unknown metadata type")
		}
		genReq.MetadataSubType = &sub
	}
	return genReq, nil
}

// classify keeps typed client errors and treats everything else as transport.
func classify(err error) error {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}
	if errors.Is(err, context.Canceled) {
		return domain.WrapGenerationError(err, domain.ErrTransport, "Request cancelled")
	}
	return domain.WrapGenerationError(err, domain.ErrTransport, "System Error")
}

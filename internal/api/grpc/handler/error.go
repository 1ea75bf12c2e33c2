package handler

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/golekaab-server/internal/model"
)

const internalErrorMessage = "internal server error"

// handleError maps domain errors to gRPC status errors. Unclassified errors
// become codes.Internal without detail.
func handleError(err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return validationStatus(verr)
	}

	switch {
	case errors.Is(err, model.ErrEmailTaken):
		return status.Error(codes.AlreadyExists, model.ErrEmailTaken.Error())
	case errors.Is(err, model.ErrMissingToken):
		return status.Error(codes.InvalidArgument, model.ErrMissingToken.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, model.ErrInvalidCredentials.Error())
	case errors.Is(err, model.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, model.ErrInvalidToken.Error())
	case errors.Is(err, model.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, model.ErrTokenExpired.Error())
	case errors.Is(err, model.ErrInvalidSessionToken):
		return status.Error(codes.Unauthenticated, model.ErrInvalidSessionToken.Error())
	case errors.Is(err, model.ErrTooManyAttempts):
		return status.Error(codes.ResourceExhausted, model.ErrTooManyAttempts.Error())
	case errors.Is(err, model.ErrForbidden):
		return status.Error(codes.PermissionDenied, model.ErrForbidden.Error())
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "user not found")
	default:
		return status.Error(codes.Internal, internalErrorMessage)
	}
}

func validationStatus(verr *model.ValidationError) error {
	st := status.New(codes.InvalidArgument, verr.Error())

	violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		violations = append(violations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Message,
		})
	}

	detailed, err := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

// invalidArgument reports a single malformed request field.
func invalidArgument(field, message string) error {
	return validationStatus(&model.ValidationError{Fields: []model.FieldError{{
		Field:   field,
		Rule:    "format",
		Message: message,
	}}})
}

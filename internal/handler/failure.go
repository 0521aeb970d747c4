package handler

import (
	"context"
	"errors"

	"secretnick/internal/app/room"
	"secretnick/internal/pkg/errs"
	"secretnick/internal/pkg/logx"
)

// toCustomError maps an error returned by the room services to the response error.
// notFoundCode selects the code used for CategoryNotFound failures.
func toCustomError(ctx context.Context, err error, notFoundCode int) *errs.CustomError {
	f, ok := room.AsFailure(err)
	if !ok {
		logger := logx.FromContext(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Err(err).Msg("Request abandoned before completion.")
		} else {
			logger.Error().Err(err).Msg("Unhandled service error.")
		}
		return errs.NewError(errs.ErrUnknown)
	}

	var code int
	switch f.Category {
	case room.CategoryNotFound:
		code = notFoundCode
	case room.CategoryForbidden:
		code = errs.ErrMemberForbidden
	default:
		code = errs.ErrMemberRequestInvalid
	}

	if f.Defect {
		logx.FromContext(ctx).Error().
			Bool("defect", true).
			Str("failure", f.Error()).
			Msg("Request rejected because of inconsistent stored data.")
	}

	details := make([]errs.FieldDetail, 0, len(f.Errors))
	for _, e := range f.Errors {
		details = append(details, errs.FieldDetail{Field: e.Field, Message: e.Message})
	}

	return errs.NewError(code).WithDetails(details...)
}

package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

// GetPreference returns nil when no preference has been saved yet.
func (w *TransactionWorkflow) GetPreference(ctx context.Context) (*models.Preference, error) {
	pref, err := w.preferences.FindOne(ctx)
	if err != nil {
		w.logUnexpected(ctx, "GetPreference", nil, err)
		return nil, err
	}
	return pref, nil
}

func (w *TransactionWorkflow) UpdatePreference(ctx context.Context, actor models.Actor, input models.NewPreference) (*models.Preference, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, models.ErrForbidden.Withf("only admins can change preferences")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	pref, err := w.preferences.Upsert(ctx, input.ToPreference())
	if err != nil {
		w.logUnexpected(ctx, "UpdatePreference", input, err)
		return nil, err
	}
	return pref, nil
}

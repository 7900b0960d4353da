package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/accessvault/internal/domain/model"
)

func TestEvaluate_VisibilityMatrix(t *testing.T) {
	type row struct {
		role       model.Role
		owner      bool
		visibility model.Visibility
		action     Action
		want       bool
	}

	U, A := model.RoleUser, model.RoleAdmin
	P, S := model.VisibilityPersonal, model.VisibilityShared

	rows := []row{
		// Read
		{U, true, P, ActionRead, true},
		{U, false, P, ActionRead, false},
		{U, true, S, ActionRead, true},
		{U, false, S, ActionRead, true},
		{A, true, P, ActionRead, true},
		{A, false, P, ActionRead, true},
		{A, true, S, ActionRead, true},
		{A, false, S, ActionRead, true},
		// Reveal
		{U, true, P, ActionReveal, true},
		{U, false, P, ActionReveal, false},
		{U, true, S, ActionReveal, true},
		{U, false, S, ActionReveal, true},
		{A, true, P, ActionReveal, true},
		{A, false, P, ActionReveal, true},
		{A, true, S, ActionReveal, true},
		{A, false, S, ActionReveal, true},
		// Update
		{U, true, P, ActionUpdate, true},
		{U, false, P, ActionUpdate, false},
		{U, true, S, ActionUpdate, true},
		{U, false, S, ActionUpdate, false},
		{A, true, P, ActionUpdate, true},
		{A, false, P, ActionUpdate, true},
		{A, true, S, ActionUpdate, true},
		{A, false, S, ActionUpdate, true},
		// Delete
		{U, true, P, ActionDelete, true},
		{U, false, P, ActionDelete, false},
		{U, true, S, ActionDelete, true},
		{U, false, S, ActionDelete, false},
		{A, true, P, ActionDelete, true},
		{A, false, P, ActionDelete, true},
		{A, true, S, ActionDelete, true},
		{A, false, S, ActionDelete, true},
	}

	for _, r := range rows {
		name := fmt.Sprintf("%s/owner=%t/%s/%s", r.role, r.owner, r.visibility, r.action)
		t.Run(name, func(t *testing.T) {
			d := Evaluate(Request{
				Action:    r.action,
				Role:      r.role,
				IsOwner:   r.owner,
				Current:   r.visibility,
				Requested: r.visibility,
			})
			assert.Equal(t, r.want, d.Allowed)
			if d.Allowed {
				assert.Empty(t, d.Reason)
			} else {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestEvaluate_Create(t *testing.T) {
	tests := []struct {
		name      string
		role      model.Role
		requested model.Visibility
		want      bool
	}{
		{"user personal", model.RoleUser, model.VisibilityPersonal, true},
		{"user shared", model.RoleUser, model.VisibilityShared, false},
		{"admin personal", model.RoleAdmin, model.VisibilityPersonal, true},
		{"admin shared", model.RoleAdmin, model.VisibilityShared, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allowed(Request{Action: ActionCreate, Role: tt.role, IsOwner: true, Requested: tt.requested})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_PromoteToShared(t *testing.T) {
	tests := []struct {
		name      string
		role      model.Role
		owner     bool
		current   model.Visibility
		requested model.Visibility
		want      bool
	}{
		{"owner user promotes", model.RoleUser, true, model.VisibilityPersonal, model.VisibilityShared, false},
		{"non-owner user promotes", model.RoleUser, false, model.VisibilityPersonal, model.VisibilityShared, false},
		{"owner admin promotes", model.RoleAdmin, true, model.VisibilityPersonal, model.VisibilityShared, true},
		{"non-owner admin promotes", model.RoleAdmin, false, model.VisibilityPersonal, model.VisibilityShared, true},
		{"user keeps shared", model.RoleUser, true, model.VisibilityShared, model.VisibilityShared, true},
		{"user demotes to personal", model.RoleUser, true, model.VisibilityShared, model.VisibilityPersonal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allowed(Request{
				Action:    ActionPromoteToShared,
				Role:      tt.role,
				IsOwner:   tt.owner,
				Current:   tt.current,
				Requested: tt.requested,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_UnknownActionDenied(t *testing.T) {
	d := Evaluate(Request{Action: "export", Role: model.RoleAdmin, IsOwner: true, Current: model.VisibilityShared})

	assert.False(t, d.Allowed)
	assert.Equal(t, "unknown action", d.Reason)
}

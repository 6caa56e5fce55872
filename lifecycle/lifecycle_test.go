package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerate(t *testing.T) {
	author := Actor{ID: "u-author", Role: RoleWriter}
	stranger := Actor{ID: "u-other", Role: RoleWriter}
	editor := Actor{ID: "u-editor", Role: RoleEditor}

	testCases := []struct {
		name    string
		actor   Actor
		current Status
		action  Action
		want    Status
		wantErr error
	}{
		{"author publishes approved", author, StatusApproved, ActionPublish, StatusPublished, nil},
		{"author cannot publish pending", author, StatusPendingAIReview, ActionPublish, "", ErrIllegalTransition},
		{"author cannot publish needs_revision", author, StatusNeedsRevision, ActionPublish, "", ErrIllegalTransition},
		{"editor publishes", editor, StatusApproved, ActionPublish, StatusPublished, nil},
		{"stranger cannot publish", stranger, StatusApproved, ActionPublish, "", ErrForbidden},
		{"author returns rejected to draft", author, StatusRejected, ActionReturnToDraft, StatusDraft, nil},
		{"author returns approved to draft", author, StatusApproved, ActionReturnToDraft, StatusDraft, nil},
		{"author cannot unpublish", author, StatusPublished, ActionReturnToDraft, "", ErrIllegalTransition},
		{"moderator unpublishes", Actor{ID: "m", Role: RoleModerator}, StatusPublished, ActionReturnToDraft, StatusDraft, nil},
		{"stranger cannot return to draft", stranger, StatusNeedsRevision, ActionReturnToDraft, "", ErrForbidden},
		{"anonymous actor", Actor{}, StatusApproved, ActionPublish, "", ErrForbidden},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			got, err := Moderate(testCase.actor, "u-author", testCase.current, testCase.action)
			if testCase.wantErr != nil {
				assert.True(t, errors.Is(err, testCase.wantErr), "expected %v, got %v", testCase.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestResubmit(t *testing.T) {
	author := Actor{ID: "u1", Role: RoleWriter}

	assert.NoError(t, Resubmit(author, "u1", StatusNeedsRevision))
	assert.NoError(t, Resubmit(author, "u1", StatusDraft))
	assert.ErrorIs(t, Resubmit(author, "u1", StatusPublished), ErrIllegalTransition)
	assert.ErrorIs(t, Resubmit(author, "u1", StatusRejected), ErrIllegalTransition)
	assert.ErrorIs(t, Resubmit(Actor{ID: "u2", Role: RoleAdmin}, "u1", StatusNeedsRevision), ErrForbidden)
}

func TestReviewOutcome(t *testing.T) {
	for decision, want := range map[string]Status{
		"approved":       StatusApproved,
		"needs_revision": StatusNeedsRevision,
		"rejected":       StatusRejected,
	} {
		got, err := ReviewOutcome(decision)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ReviewOutcome("published")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPublishedAtCoupling(t *testing.T) {
	for _, s := range AllStatuses {
		want := s == StatusApproved || s == StatusPublished
		assert.Equal(t, want, s.HasPublishedAt(), s)
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("publish")
	require.NoError(t, err)
	assert.Equal(t, ActionPublish, a)

	_, err = ParseAction("delete")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRolePrivileged(t *testing.T) {
	assert.True(t, RoleEditor.Privileged())
	assert.True(t, RoleModerator.Privileged())
	assert.True(t, RoleAdmin.Privileged())
	assert.False(t, RoleWriter.Privileged())
	assert.False(t, Role("").Privileged())
}

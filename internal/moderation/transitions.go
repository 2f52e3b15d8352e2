package moderation

import (
	"fmt"

	domainIssue "civicfix/internal/domain/issue"
	domainUser "civicfix/internal/domain/user"
	appErrors "civicfix/pkg/errors"
)

// Transition is one legal (role, from, to) triple. Anything not listed in the
// table below is rejected.
type Transition struct {
	Role domainUser.Role
	From domainIssue.Status
	To   domainIssue.Status
}

// legalTransitions is the authoritative status-transition contract. Status
// changes are moderator-only: members never appear here. closed -> open is
// the administrative reopen and is additionally blocked for flagged issues in
// ValidateStatusTransition.
var legalTransitions = []Transition{
	{domainUser.RoleModerator, domainIssue.StatusOpen, domainIssue.StatusInProgress},
	{domainUser.RoleModerator, domainIssue.StatusInProgress, domainIssue.StatusResolved},
	{domainUser.RoleModerator, domainIssue.StatusResolved, domainIssue.StatusClosed},
	{domainUser.RoleModerator, domainIssue.StatusClosed, domainIssue.StatusOpen},
}

// ValidateStatusTransition checks whether the actor may move an issue from
// its current status to the requested one.
func ValidateStatusTransition(actor domainUser.Principal, iss *domainIssue.Issue, to domainIssue.Status) error {
	if !to.Valid() {
		return appErrors.NewAppError(
			appErrors.CodeValidation,
			fmt.Sprintf("unknown status %q", to),
			domainIssue.ErrInvalidStatus,
		)
	}

	if !actor.IsModerator() {
		return appErrors.NewAppError(
			appErrors.CodeForbidden,
			"status changes require the moderator role",
			appErrors.ErrInsufficientPermissions,
		)
	}

	// A flagged issue is terminal: the only way out is the unflag operation.
	if iss.Flag != domainIssue.FlagNone {
		return appErrors.NewAppError(
			appErrors.CodeIllegalTransition,
			fmt.Sprintf("issue is moderation-flagged (%s) and cannot change status", iss.Flag),
			nil,
		)
	}

	for _, t := range legalTransitions {
		if t.Role == actor.Role && t.From == iss.Status && t.To == to {
			return nil
		}
	}

	return appErrors.NewAppError(
		appErrors.CodeIllegalTransition,
		fmt.Sprintf("cannot transition from %s to %s", iss.Status, to),
		nil,
	)
}

// AllowedTransitions returns the statuses the actor may move the issue to.
func AllowedTransitions(actor domainUser.Principal, iss *domainIssue.Issue) []domainIssue.Status {
	var out []domainIssue.Status
	for _, t := range legalTransitions {
		if t.Role == actor.Role && t.From == iss.Status {
			if iss.Flag != domainIssue.FlagNone {
				continue
			}
			out = append(out, t.To)
		}
	}
	return out
}

// ValidateFlag checks whether the actor may apply a moderation flag to the
// issue. Flagging closes the issue from any non-terminal state; re-flagging
// an already flagged issue is rejected.
func ValidateFlag(actor domainUser.Principal, iss *domainIssue.Issue, flag domainIssue.ModerationFlag) error {
	if flag != domainIssue.FlagSpam && flag != domainIssue.FlagInvalid {
		return appErrors.NewAppError(
			appErrors.CodeValidation,
			fmt.Sprintf("unknown moderation flag %q", flag),
			domainIssue.ErrInvalidFlag,
		)
	}

	if !actor.IsModerator() {
		return appErrors.NewAppError(
			appErrors.CodeForbidden,
			"moderation requires the moderator role",
			appErrors.ErrInsufficientPermissions,
		)
	}

	if iss.Flag != domainIssue.FlagNone {
		return appErrors.NewAppError(
			appErrors.CodeIllegalTransition,
			fmt.Sprintf("issue is already flagged as %s", iss.Flag),
			nil,
		)
	}

	return nil
}

// ValidateUnflag checks whether the actor may clear a moderation flag,
// reopening the issue.
func ValidateUnflag(actor domainUser.Principal, iss *domainIssue.Issue) error {
	if !actor.IsModerator() {
		return appErrors.NewAppError(
			appErrors.CodeForbidden,
			"moderation requires the moderator role",
			appErrors.ErrInsufficientPermissions,
		)
	}

	if iss.Flag == domainIssue.FlagNone {
		return appErrors.NewAppError(
			appErrors.CodeIllegalTransition,
			"issue is not flagged",
			nil,
		)
	}

	return nil
}

// ValidateTextEdit checks whether the actor may edit the issue's textual
// fields: author-only, and only while the issue is still open.
func ValidateTextEdit(actor domainUser.Principal, iss *domainIssue.Issue) error {
	if actor.IsAnonymous() {
		return appErrors.NewAppError(
			appErrors.CodeUnauthenticated,
			"authentication required",
			appErrors.ErrUnauthenticated,
		)
	}

	if !iss.OwnedBy(actor.UserID) {
		return appErrors.NewAppError(
			appErrors.CodeForbidden,
			"only the author may edit this issue",
			appErrors.ErrInsufficientPermissions,
		)
	}

	if iss.Status != domainIssue.StatusOpen {
		return appErrors.NewAppError(
			appErrors.CodeIllegalTransition,
			fmt.Sprintf("issue is %s; text edits are only allowed while open", iss.Status),
			nil,
		)
	}

	return nil
}

package lesson

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mathstutor/mathstutor-go/core/group"
)

// Membership roles that grant lesson editing within the owning group.
var editorRoles = map[string]bool{
	group.MemberRoleGroupAdmin:    true,
	group.MemberRoleOwner:         true,
	group.MemberRoleOrganizer:     true,
	group.MemberRoleLessonManager: true,
}

func permCacheKey(userID, lessonID int) string {
	return fmt.Sprintf("edit_permission_%d_%d", userID, lessonID)
}

func permStampKey(userID, lessonID int) string {
	return fmt.Sprintf("edit_permission_timestamp_%d_%d", userID, lessonID)
}

// CanEdit resolves whether the user may edit the lesson: site admins and the
// lesson's creator (matched by id, with a username fallback) short-circuit
// to allowed; otherwise the user's membership role in the lesson's owning
// group is checked against the editor allow-list. The result is cached for
// the configured window keyed by (user, lesson); the cache is only ever
// invalidated by expiry, an accepted staleness trade-off.
func (svc *Service) CanEdit(ctx context.Context, userID, lessonID int) (bool, error) {
	if allowed, ok := svc.cachedPermission(ctx, userID, lessonID); ok {
		return allowed, nil
	}

	lsn, err := svc.backend.GetLesson(ctx, lessonID)
	if err != nil {
		return false, err
	}
	usr, err := svc.users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}

	if usr.IsSiteAdmin ||
		userID == lsn.CreatedBy ||
		(lsn.TutorUsername.Valid && usr.Username == lsn.TutorUsername.String) {
		return svc.cachePermission(ctx, userID, lessonID, true), nil
	}

	if !lsn.GroupID.Valid {
		return svc.cachePermission(ctx, userID, lessonID, false), nil
	}

	memberships, err := svc.groups.MembershipsByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	allowed := false
	for _, m := range memberships {
		if m.GroupID == lsn.GroupID.Int && editorRoles[m.Role] {
			allowed = true
			break
		}
	}
	return svc.cachePermission(ctx, userID, lessonID, allowed), nil
}

func (svc *Service) cachedPermission(ctx context.Context, userID, lessonID int) (allowed, ok bool) {
	cached, err := svc.kv.Get(ctx, permCacheKey(userID, lessonID))
	if err != nil {
		return false, false
	}
	stamp, err := svc.kv.Get(ctx, permStampKey(userID, lessonID))
	if err != nil {
		return false, false
	}
	ms, err := strconv.ParseInt(stamp, 10, 64)
	if err != nil {
		return false, false
	}
	if svc.nowFunc().UnixMilli()-ms >= svc.permTTL.Milliseconds() {
		return false, false
	}
	return cached == "true", true
}

func (svc *Service) cachePermission(ctx context.Context, userID, lessonID int, allowed bool) bool {
	if err := svc.kv.Set(ctx, permCacheKey(userID, lessonID), strconv.FormatBool(allowed)); err != nil {
		svc.log.Error("lesson: caching edit permission", err)
		return allowed
	}
	stamp := strconv.FormatInt(svc.nowFunc().UnixMilli(), 10)
	if err := svc.kv.Set(ctx, permStampKey(userID, lessonID), stamp); err != nil {
		svc.log.Error("lesson: caching edit permission timestamp", err)
	}
	return allowed
}

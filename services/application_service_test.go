package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sahilchouksey/edu-platform-api/model"
	"github.com/sahilchouksey/edu-platform-api/repository"
	"github.com/sahilchouksey/edu-platform-api/services/events"
	"github.com/sahilchouksey/edu-platform-api/utils/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicationFixture struct {
	svc         *ApplicationService
	apps        *memApplications
	users       *memUsers
	groups      *memGroups
	bus         *events.Recorder
	invalidated *courseInvalidations
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	f := &applicationFixture{
		apps:        newMemApplications(),
		users:       newMemUsers(),
		groups:      newMemGroups(),
		bus:         &events.Recorder{},
		invalidated: &courseInvalidations{},
	}
	f.svc = NewApplicationService(f.apps, f.users, f.groups, f.invalidated, f.bus)
	return f
}

func (f *applicationFixture) group(t *testing.T, number string, capacity int) uint {
	t.Helper()
	g := &model.Group{GroupNumber: number, MaxStudents: capacity, CourseID: 1}
	require.NoError(t, f.groups.Create(context.Background(), g))
	return g.ID
}

func confirmed() *string { return strPtr(model.ApplicationStatusConfirmed) }

func TestConfirmCreatesStudentSeatAndOneEvent(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	groupID := f.group(t, "A-1", 2)
	admin := uintPtr(77)

	app, err := f.svc.Create(ctx, CreateApplicationInput{
		ChildName:   "Mia",
		ParentPhone: "+100",
		ParentEmail: strPtr("Parent@Example.com"),
		GroupID:     &groupID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusNew, app.Status)

	updated, err := f.svc.Update(ctx, admin, app.ID, UpdateApplicationInput{Status: confirmed()})
	require.NoError(t, err)

	require.Equal(t, 1, f.users.count())
	user, err := f.users.FindByEmail(ctx, "parent@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, user.Role)
	require.NotNil(t, updated.UserID)
	assert.Equal(t, user.ID, *updated.UserID)

	members, err := f.groups.ListMembers(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, user.ID, members[0].StudentID)
	assert.Equal(t, app.ID, *members[0].ApplicationID)

	published := f.bus.Named(events.NameApplicationStatus)
	require.Len(t, published, 1)
	ev := published[0].(events.ApplicationStatus)
	assert.Equal(t, admin, ev.AdminID)
	assert.Equal(t, "Mia", ev.ChildName)

	// saving again with nothing that matters changed fires nothing
	_, err = f.svc.Update(ctx, admin, app.ID, UpdateApplicationInput{Status: confirmed(), Message: strPtr("called back")})
	require.NoError(t, err)
	assert.Len(t, f.bus.Events(), 1)
	assert.Equal(t, 1, f.users.count())
	assert.Equal(t, 1, f.groups.memberCount(groupID))
}

func TestConfirmLinksExistingUser(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	existing := f.users.seed(model.User{Email: "parent@example.com", Role: model.RoleStudent})

	app, err := f.svc.Create(ctx, CreateApplicationInput{ChildName: "Leo", ParentPhone: "1", ParentEmail: strPtr(" PARENT@example.com ")})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed()})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, *updated.UserID)
	assert.Equal(t, 1, f.users.count())
}

func TestConfirmWithoutEmailUsesPlaceholder(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	app, err := f.svc.Create(ctx, CreateApplicationInput{ChildName: "Ava", ParentPhone: "1"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed()})
	require.NoError(t, err)

	user, err := f.users.FindByID(ctx, *updated.UserID)
	require.NoError(t, err)
	assert.Contains(t, user.Email, "@placeholder.local")
	assert.Equal(t, "Ava", user.Name)
}

func TestGroupChangeWhileConfirmedMovesSeat(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	first := f.group(t, "A-1", 5)
	second := f.group(t, "B-1", 5)

	app, err := f.svc.Create(ctx, CreateApplicationInput{ChildName: "Mia", ParentPhone: "1", GroupID: &first})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed()})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{GroupID: Some(second)})
	require.NoError(t, err)

	assert.Equal(t, 0, f.groups.memberCount(first))
	assert.Equal(t, 1, f.groups.memberCount(second))
	g, _ := f.groups.FindByID(ctx, first)
	assert.Equal(t, 0, g.CurrentStudents)
	assert.Len(t, f.bus.Named(events.NameApplicationStatus), 2)
	assert.Equal(t, 1, f.users.count())
}

func TestConfirmIntoFullGroupFails(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	full := f.group(t, "A-1", 1)
	require.NoError(t, f.groups.AddMember(ctx, repository.Membership{GroupID: full, StudentID: 500}))

	app, err := f.svc.Create(ctx, CreateApplicationInput{ChildName: "Mia", ParentPhone: "1", GroupID: &full})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed()})
	assert.ErrorIs(t, err, apperror.ErrCapacityExceeded)
	assert.Empty(t, f.bus.Events())

	stored, err := f.apps.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusNew, stored.Status)
	require.NotNil(t, stored.UserID, "the created account stays linked for the next attempt")

	// a retry into a group with room reuses the same account
	open := f.group(t, "B-1", 3)
	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed(), GroupID: Some(open)})
	require.NoError(t, err)
	assert.Equal(t, 1, f.users.count())
}

func TestUpdateNullClearsOptionalFields(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	courseID := uint(3)

	app, err := f.svc.Create(ctx, CreateApplicationInput{ChildName: "Mia", ParentPhone: "1", CourseID: &courseID, ParentEmail: strPtr("p@example.com")})
	require.NoError(t, err)

	var in UpdateApplicationInput
	require.NoError(t, json.Unmarshal([]byte(`{"course_id": null, "child_name": "Mia B"}`), &in))

	updated, err := f.svc.Update(ctx, nil, app.ID, in)
	require.NoError(t, err)
	assert.Nil(t, updated.CourseID)
	assert.Equal(t, "Mia B", updated.ChildName)
	require.NotNil(t, updated.ParentEmail, "absent fields are left as they are")
	assert.Empty(t, f.bus.Events())
}

func TestConfirmRefusesNonStudentAccount(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	groupID := f.group(t, "A-1", 3)
	f.users.seed(model.User{Email: "teach@example.com", Role: model.RoleTeacher})

	app, err := f.svc.Create(ctx, CreateApplicationInput{
		ChildName:   "Mia",
		ParentPhone: "1",
		ParentEmail: strPtr("teach@example.com"),
		GroupID:     &groupID,
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed()})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	assert.Equal(t, 0, f.groups.memberCount(groupID))
	assert.Empty(t, f.bus.Events())
	stored, err := f.apps.FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusNew, stored.Status)
	assert.Nil(t, stored.UserID)
}

func TestSeatingDropsCachedCourses(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()
	first := f.group(t, "A-1", 5)
	second := &model.Group{GroupNumber: "B-1", MaxStudents: 5, CourseID: 2}
	require.NoError(t, f.groups.Create(ctx, second))

	app, err := f.svc.Create(ctx, CreateApplicationInput{ChildName: "Mia", ParentPhone: "1", GroupID: &first})
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{Status: confirmed()})
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, f.invalidated.reset())

	_, err = f.svc.Update(ctx, nil, app.ID, UpdateApplicationInput{GroupID: Some(second.ID)})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, f.invalidated.reset())
}

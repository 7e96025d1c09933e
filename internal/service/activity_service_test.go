package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/taskboard-api/internal/dto"
	"github.com/noah-isme/taskboard-api/internal/models"
)

func TestActivityServiceAppendPrefixesAndMasks(t *testing.T) {
	f := newFixture(t)
	publisher := &publisherStub{}
	svc := NewActivityService(f.logs, f.users, publisher, testLogger())
	ctx := context.Background()

	user := f.user(t, "Ala", "ala@test.com", models.RoleStudent)

	entry, err := svc.Append(ctx, ActivityEntry{
		UserID: &user.ID,
		Action: "Logged in",
		Metadata: map[string]interface{}{
			"email":        "ala@test.com",
			"access_token": "abc",
			"field":        "status",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Ala Kowalski, Logged in", entry.Action)
	require.Equal(t, "***", entry.Metadata["email"])
	require.Equal(t, "***", entry.Metadata["access_token"])
	require.Equal(t, "status", entry.Metadata["field"])

	require.Len(t, publisher.events, 1)
	require.Equal(t, entry.ID, publisher.events[0].ID)

	system, err := svc.Append(ctx, ActivityEntry{Action: "Nightly cleanup"})
	require.NoError(t, err)
	require.Equal(t, "Nightly cleanup", system.Action)
	require.Nil(t, system.UserID)

	long, err := svc.Append(ctx, ActivityEntry{Action: strings.Repeat("x", 300)})
	require.NoError(t, err)
	require.Len(t, long.Action, 255)

	_, err = svc.Append(ctx, ActivityEntry{Action: "  "})
	require.Error(t, err)
}

func TestActivityServiceRecordSwallowsPublishFailures(t *testing.T) {
	f := newFixture(t)
	svc := NewActivityService(f.logs, f.users, &publisherStub{err: errors.New("nats down")}, testLogger())

	svc.Record(context.Background(), ActivityEntry{Action: "Started"})
	svc.Record(context.Background(), ActivityEntry{Action: ""})

	require.Equal(t, []string{"Started"}, f.actions(t))
}

func TestActivityServiceListIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	svc := f.activity
	ctx := context.Background()

	admin := f.user(t, "Root", "root@test.com", models.RoleAdmin)
	student := f.user(t, "Ala", "ala@test.com", models.RoleStudent)

	svc.Record(ctx, ActivityEntry{Action: "Booted"})
	svc.Record(ctx, ActivityEntry{UserID: &student.ID, Action: "Logged in"})

	_, err := svc.List(ctx, NewActor(student), dto.ActivityListRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	entries, err := svc.List(ctx, NewActor(admin), dto.ActivityListRequest{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Ala Kowalski", entries[0].User)
	require.Equal(t, "Ala Kowalski, Logged in", entries[0].Action)
	require.Equal(t, "System", entries[1].User)

	page, err := svc.List(ctx, NewActor(admin), dto.ActivityListRequest{Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "Booted", page[0].Action)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"academy/backend/models"
)

// ErrNotEnrolled is returned by the server-backed unenroll path when no
// enrollment for the course is known locally or on the server.
var ErrNotEnrolled = errors.New("not enrolled in course")

type localState struct {
	Enrollments       []models.Enrollment `json:"enrollments"`
	FavoriteCourseIDs []uint              `json:"favoriteCourseIds"`
}

// EnrollmentStore mirrors a user's enrollments and favorited course ids in a
// per-user JSON file, the way the web client keeps them in browser storage
// keyed by user id. Switching users (or logging out via SetUser(0)) replaces
// the in-memory state wholesale so nothing leaks between sessions.
type EnrollmentStore struct {
	mu     sync.Mutex
	api    *Client
	dir    string
	userID uint
	state  localState
}

func NewEnrollmentStore(api *Client, dir string) *EnrollmentStore {
	return &EnrollmentStore{api: api, dir: dir}
}

// SetUser scopes the store to the given user, loading that user's persisted
// state. A zero id is a logout: state resets to the empty default.
func (s *EnrollmentStore) SetUser(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userID = userID
	s.state = localState{}
	if userID == 0 {
		return nil
	}

	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.state)
}

func (s *EnrollmentStore) path(userID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("enrollments_%d.json", userID))
}

// persist writes the current state; callers hold the lock.
func (s *EnrollmentStore) persist() error {
	if s.userID == 0 {
		return nil
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(s.userID), data, 0o644)
}

func (s *EnrollmentStore) IsEnrolled(courseID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findEnrollment(courseID) >= 0
}

func (s *EnrollmentStore) IsFavorite(courseID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.state.FavoriteCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}

func (s *EnrollmentStore) Enrollments() []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Enrollment, len(s.state.Enrollments))
	copy(out, s.state.Enrollments)
	return out
}

func (s *EnrollmentStore) Favorites() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, len(s.state.FavoriteCourseIDs))
	copy(out, s.state.FavoriteCourseIDs)
	return out
}

// findEnrollment returns the index of the local enrollment for courseID, or
// -1. Callers hold the lock.
func (s *EnrollmentStore) findEnrollment(courseID uint) int {
	for i, e := range s.state.Enrollments {
		if e.CourseID == courseID {
			return i
		}
	}
	return -1
}

// EnrollInCourse enrolls the current user in a course. Already-enrolled is a
// no-op, so repeated calls make at most one server call. The local record is
// appended only after the server accepts — there is no optimistic update; on
// server failure the error is returned and local state is untouched.
func (s *EnrollmentStore) EnrollInCourse(ctx context.Context, courseID uint) error {
	s.mu.Lock()
	if s.findEnrollment(courseID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	userID := s.userID
	s.mu.Unlock()

	result, err := s.api.Enroll(ctx, userID, courseID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}
	enrollment.ID = result.EnrollmentID
	s.state.Enrollments = append(s.state.Enrollments, enrollment)
	return s.persist()
}

// ToggleFavorite adds or removes a course id from the favorites list. Purely
// local; favorites never round-trip to the server in this slice.
func (s *EnrollmentStore) ToggleFavorite(courseID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.state.FavoriteCourseIDs {
		if id == courseID {
			s.state.FavoriteCourseIDs = append(
				s.state.FavoriteCourseIDs[:i], s.state.FavoriteCourseIDs[i+1:]...)
			return s.persist()
		}
	}
	s.state.FavoriteCourseIDs = append(s.state.FavoriteCourseIDs, courseID)
	return s.persist()
}

// UnenrollLocal removes the local enrollment record without calling the
// server. This is the course-page path; the management page uses
// UnenrollOnServer, which performs the server delete and then refreshes.
func (s *EnrollmentStore) UnenrollLocal(courseID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findEnrollment(courseID)
	if i < 0 {
		return nil
	}
	s.state.Enrollments = append(s.state.Enrollments[:i], s.state.Enrollments[i+1:]...)
	return s.persist()
}

// UnenrollOnServer deletes the enrollment on the server and refreshes local
// state from the server's view.
func (s *EnrollmentStore) UnenrollOnServer(ctx context.Context, courseID uint) error {
	s.mu.Lock()
	i := s.findEnrollment(courseID)
	var enrollmentID uint
	if i >= 0 {
		enrollmentID = s.state.Enrollments[i].ID
	}
	s.mu.Unlock()

	if enrollmentID == 0 {
		return ErrNotEnrolled
	}

	if _, err := s.api.Unenroll(ctx, enrollmentID); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Refresh replaces the local enrollment list with the server's.
func (s *EnrollmentStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	s.mu.Unlock()
	if userID == 0 {
		return nil
	}

	enrollments, err := s.api.ListUserEnrollments(ctx, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != userID {
		// User switched while the fetch was in flight; drop the result.
		return nil
	}
	s.state.Enrollments = enrollments
	return s.persist()
}

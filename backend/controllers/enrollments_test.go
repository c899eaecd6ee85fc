package controllers_test

import (
	"fmt"
	"testing"

	"academy/backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollMissingCourseID(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "Student", "student@example.com", "student")

	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId": user.ID,
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_FIELD", result["code"])
	assert.Contains(t, result["error"], "courseId")
}

func TestEnrollCourseNotFound(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "Student", "student@example.com", "student")

	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   user.ID,
		"courseId": 777,
	})

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, result["error"], "777")
}

func TestEnrollMissingUserIDIsFatal(t *testing.T) {
	app, db := newTestApp(t)
	course := seedCourse(t, db, models.Course{Title: "Orphan Enroll"})

	// userId is not validated; the lookup failure propagates to the app
	// error handler as a uniform 500.
	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"courseId": course.ID,
	})

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", result["code"])
	assert.Equal(t, "/api/enrollments", result["path"])
	assert.Equal(t, true, result["error"])
}

func TestEnrollAndUnenrollLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "Student", "student@example.com", "student")
	course := seedCourse(t, db, models.Course{Title: "Lifecycle"})

	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   user.ID,
		"courseId": course.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(course.ID), result["courseId"])
	assert.Equal(t, float64(user.ID), result["userId"])
	enrollmentID := uint(result["enrollmentId"].(float64))

	var stored models.Course
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.Equal(t, 1, stored.EnrollmentCount)

	// Duplicate enrollment is rejected at the application layer.
	resp, result = doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   user.ID,
		"courseId": course.ID,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ALREADY_ENROLLED", result["code"])

	resp, result = doJSON(t, app, "DELETE", fmt.Sprintf("/api/enrollments/%d", enrollmentID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(enrollmentID), result["deletedId"])

	// Counter decremented by exactly one, row gone.
	require.NoError(t, db.First(&stored, course.ID).Error)
	assert.Equal(t, 0, stored.EnrollmentCount)

	resp, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/enrollments/%d/progress", enrollmentID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/api/enrollments/%d", enrollmentID), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListUserEnrollmentsIncludesCourseAndInstructor(t *testing.T) {
	app, db := newTestApp(t)
	instructor := seedUser(t, db, "Prof Plum", "plum@example.com", "instructor")
	student := seedUser(t, db, "Student", "student@example.com", "student")
	course := seedCourse(t, db, models.Course{Title: "Taught", InstructorID: instructor.ID})

	resp, _ := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   student.ID,
		"courseId": course.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	listResp, enrollments := doJSONList(t, app, "GET", fmt.Sprintf("/api/enrollments/user/%d", student.ID))
	assert.Equal(t, fiber.StatusOK, listResp.StatusCode)
	require.Len(t, enrollments, 1)

	courseData := enrollments[0]["course"].(map[string]interface{})
	assert.Equal(t, "Taught", courseData["title"])
	instructorData := courseData["instructor"].(map[string]interface{})
	assert.Equal(t, "Prof Plum", instructorData["name"])
}

func TestProgressLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "Student", "student@example.com", "student")
	course := seedCourse(t, db, models.Course{Title: "Two Lessons"})

	lessonOne := models.Lesson{CourseID: course.ID, Title: "One", SequenceOrder: 1}
	lessonTwo := models.Lesson{CourseID: course.ID, Title: "Two", SequenceOrder: 2}
	require.NoError(t, db.Create(&lessonOne).Error)
	require.NoError(t, db.Create(&lessonTwo).Error)

	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   user.ID,
		"courseId": course.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	enrollmentID := uint(result["enrollmentId"].(float64))

	// Completing the first of two lessons puts progress at 50.
	resp, result = doJSON(t, app, "POST",
		fmt.Sprintf("/api/enrollments/%d/lessons/%d/progress", enrollmentID, lessonOne.ID),
		map[string]interface{}{"timeSpent": 120, "lastPosition": 300, "completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 50.0, result["progress"])

	// Time spent accumulates, resume position overwrites.
	resp, result = doJSON(t, app, "POST",
		fmt.Sprintf("/api/enrollments/%d/lessons/%d/progress", enrollmentID, lessonOne.ID),
		map[string]interface{}{"timeSpent": 60, "lastPosition": 450})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	record := result["lessonProgress"].(map[string]interface{})
	assert.Equal(t, 180.0, record["time_spent"])
	assert.Equal(t, 450.0, record["last_position"])

	resp, result = doJSON(t, app, "POST",
		fmt.Sprintf("/api/enrollments/%d/lessons/%d/progress", enrollmentID, lessonTwo.ID),
		map[string]interface{}{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, result["progress"])

	var enrollment models.Enrollment
	require.NoError(t, db.First(&enrollment, enrollmentID).Error)
	assert.Equal(t, 100, enrollment.Progress)
	assert.NotNil(t, enrollment.CompletedAt)
}

func TestGetProgressRefreshesStoredValue(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "Student", "student@example.com", "student")
	course := seedCourse(t, db, models.Course{Title: "Drifted"})
	lesson := models.Lesson{CourseID: course.ID, Title: "Only", SequenceOrder: 1}
	require.NoError(t, db.Create(&lesson).Error)

	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   user.ID,
		"courseId": course.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	enrollmentID := uint(result["enrollmentId"].(float64))

	resp, _ = doJSON(t, app, "POST",
		fmt.Sprintf("/api/enrollments/%d/lessons/%d/progress", enrollmentID, lesson.ID),
		map[string]interface{}{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Simulate drift between the derived value and the stored column.
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("id = ?", enrollmentID).
		UpdateColumn("progress", 10).Error)

	resp, result = doJSON(t, app, "GET", fmt.Sprintf("/api/enrollments/%d/progress", enrollmentID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 100.0, result["progress"])
	assert.Equal(t, 1.0, result["completedLessons"])
	assert.Equal(t, 1.0, result["totalLessons"])

	// The read refreshed the stored value.
	var enrollment models.Enrollment
	require.NoError(t, db.First(&enrollment, enrollmentID).Error)
	assert.Equal(t, 100, enrollment.Progress)
}

func TestIssueCertificate(t *testing.T) {
	app, db := newTestApp(t)
	user := seedUser(t, db, "Student", "student@example.com", "student")
	course := seedCourse(t, db, models.Course{Title: "Certified"})
	lesson := models.Lesson{CourseID: course.ID, Title: "Only", SequenceOrder: 1}
	require.NoError(t, db.Create(&lesson).Error)

	resp, result := doJSON(t, app, "POST", "/api/enrollments", map[string]interface{}{
		"userId":   user.ID,
		"courseId": course.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	enrollmentID := uint(result["enrollmentId"].(float64))

	// Not completed yet.
	resp, result = doJSON(t, app, "POST", fmt.Sprintf("/api/enrollments/%d/certificate", enrollmentID), nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "NOT_COMPLETED", result["code"])

	resp, _ = doJSON(t, app, "POST",
		fmt.Sprintf("/api/enrollments/%d/lessons/%d/progress", enrollmentID, lesson.ID),
		map[string]interface{}{"completed": true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, first := doJSON(t, app, "POST", fmt.Sprintf("/api/enrollments/%d/certificate", enrollmentID), nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, first["serial_number"])

	// Idempotent: a second request returns the same certificate.
	resp, second := doJSON(t, app, "POST", fmt.Sprintf("/api/enrollments/%d/certificate", enrollmentID), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, first["serial_number"], second["serial_number"])
}

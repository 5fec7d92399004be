package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplates(t *testing.T) {
	tmpl, err := ParseTemplates()
	require.NoError(t, err)

	for _, page := range []string{
		"index.html", "signup.html", "login.html", "departments.html", "create_department.html",
		"students.html", "create_student.html", "edit_student.html", "courses.html",
		"create_course.html", "activity.html", "error.html",
	} {
		assert.NotNil(t, tmpl.Lookup(page), page)
	}
}

func TestErrorPageRenders(t *testing.T) {
	tmpl := MustParseTemplates()

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "error.html", map[string]interface{}{
		"Title":   "Forbidden",
		"Status":  403,
		"Message": "Access denied",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Access denied")
	assert.Contains(t, buf.String(), `href="/login"`)
}

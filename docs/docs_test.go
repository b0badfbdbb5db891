package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type operation struct {
	Summary    string `json:"summary"`
	Parameters []struct {
		Name        string `json:"name"`
		In          string `json:"in"`
		Description string `json:"description"`
		Required    bool   `json:"required"`
	} `json:"parameters"`
}

func readDoc(t *testing.T) map[string]map[string]operation {
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]operation `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))
	assert.Equal(t, "Account Book API", doc.Info.Title)
	return doc.Paths
}

func TestDocument_CoversRoutes(t *testing.T) {
	routes := map[string]string{
		"/user/register":              "post",
		"/user/login":                 "post",
		"/user/logout":                "post",
		"/user/profile":               "get",
		"/category/list":              "get",
		"/transaction/add":            "post",
		"/transaction/update":         "put",
		"/transaction/delete":         "delete",
		"/transaction/list":           "get",
		"/transaction/stats":          "get",
		"/transaction/category_stats": "get",
		"/transaction/trend_stats":    "get",
		"/transaction/export":         "get",
		"/transaction/export_pdf":     "get",
	}

	paths := readDoc(t)
	assert.Len(t, paths, len(routes))
	for path, method := range routes {
		op, ok := paths[path][method]
		if assert.True(t, ok, "%s %s", method, path) {
			assert.NotEmpty(t, op.Summary, path)
		}
	}
}

func TestDocument_BodyParameters(t *testing.T) {
	want := map[string]struct {
		description string
		required    bool
	}{
		"/user/register":      {"Registration data", true},
		"/user/login":         {"Login credentials", true},
		"/user/logout":        {"Token to revoke", false},
		"/transaction/add":    {"Transaction", true},
		"/transaction/update": {"Transaction", true},
	}

	for path, ops := range readDoc(t) {
		for method, op := range ops {
			for _, p := range op.Parameters {
				if p.In != "body" {
					continue
				}
				expected, ok := want[path]
				require.True(t, ok, "unexpected body on %s %s", method, path)
				assert.Equal(t, expected.description, p.Description, path)
				assert.Equal(t, expected.required, p.Required, path)
			}
		}
	}
}

package meta

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

type document struct {
	Name  string        `yaml:"name"`
	Delay time.Duration `yaml:"delay"`
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	baseURL := "mem://localhost/meta"
	assets := map[string]string{
		"valid.yaml":   "name: ${env.META_NAME}\ndelay: 150ms\n",
		"invalid.yaml": "name: [unterminated\n",
	}
	for name, content := range assets {
		require.NoError(t, fs.Upload(ctx, baseURL+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)))
	}
	t.Setenv("META_NAME", "asyncweb")

	testCases := []struct {
		name      string
		location  string
		expect    document
		expectErr error
		anyErr    bool
	}{
		{name: "relative", location: "valid.yaml", expect: document{Name: "asyncweb", Delay: 150 * time.Millisecond}},
		{name: "absolute", location: baseURL + "/valid.yaml", expect: document{Name: "asyncweb", Delay: 150 * time.Millisecond}},
		{name: "missing", location: "missing.yaml", expectErr: ErrNotFound},
		{name: "invalid", location: "invalid.yaml", anyErr: true},
	}
	srv := New(fs, baseURL)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var actual document
			err := srv.Load(ctx, tc.location, &actual)
			switch {
			case tc.expectErr != nil:
				assert.ErrorIs(t, err, tc.expectErr)
			case tc.anyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expect, actual)
			}
		})
	}
}

func TestService_URL(t *testing.T) {
	assert.Equal(t, "mem://localhost/meta/app.yaml", New(nil, "mem://localhost/meta").URL("app.yaml"))
	assert.Equal(t, "file:///etc/app.yaml", New(nil, "mem://localhost/meta").URL("file:///etc/app.yaml"))
	assert.Equal(t, "app.yaml", New(nil, "").URL("app.yaml"))
}

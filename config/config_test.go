package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":            "9090",
		"BAD_INT":         "nine",
		"EMPTY":           "",
		"SECURE_COOKIES":  " true ",
		"TIMEOUT":         "15",
		"ACCEPTED_ORIGIN": "https://a.example, ,https://b.example",
	}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))

	assert.Equal(t, 9090, GetInt(c, "PORT", 1))
	assert.Equal(t, 1, GetInt(c, "BAD_INT", 1))
	assert.Equal(t, 1, GetInt(c, "MISSING", 1))

	assert.True(t, GetBool(c, "SECURE_COOKIES", false))
	assert.False(t, GetBool(c, "PORT", false))

	assert.Equal(t, 15*time.Second, GetSeconds(c, "TIMEOUT", 180))
	assert.Equal(t, 180*time.Second, GetSeconds(c, "MISSING", 180))

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetList(c, "ACCEPTED_ORIGIN"))
	assert.Empty(t, GetList(c, "MISSING"))
}

func TestLoadReadsDotenv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORTFOLIO_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PORTFOLIO_TEST_KEY") })

	c := Load(envFile)
	assert.Equal(t, "from-file", c["PORTFOLIO_TEST_KEY"])
}

type fakeParameterLister struct {
	pages [][]types.Parameter
	err   error
	calls int
}

func (f *fakeParameterLister) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++

	out := &ssm.GetParametersByPathOutput{Parameters: page}
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestLoadSSMOverlaysMissingKeys(t *testing.T) {
	lister := &fakeParameterLister{pages: [][]types.Parameter{
		{
			{Name: aws.String("/portfolio/prod/session_secret"), Value: aws.String("s3cret")},
			{Name: aws.String("/portfolio/prod/PORT"), Value: aws.String("9999")},
		},
		{
			{Name: aws.String("/portfolio/prod/db/DATABASE_URL"), Value: aws.String("postgres://db")},
		},
	}}
	c := map[string]string{"PORT": "8080"}

	require.NoError(t, LoadSSM(context.Background(), lister, "/portfolio/prod", c))

	assert.Equal(t, 2, lister.calls)
	assert.Equal(t, "s3cret", c["SESSION_SECRET"])
	assert.Equal(t, "8080", c["PORT"], "environment wins over SSM")
	assert.Equal(t, "postgres://db", c["DATABASE_URL"])
}

func TestLoadSSMReturnsClientErrors(t *testing.T) {
	lister := &fakeParameterLister{err: errors.New("access denied")}

	err := LoadSSM(context.Background(), lister, "/portfolio", map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

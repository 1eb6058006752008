package secrets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_AllPresent(t *testing.T) {
	src := Map{
		AgentSearchToken:        "tok",
		AgentSearchDeploymentID: "dep-1",
	}

	set, err := Resolve(src, AgentSearchToken, AgentSearchDeploymentID)

	require.NoError(t, err)
	assert.Equal(t, "tok", set.Get(AgentSearchToken))
	assert.Equal(t, "dep-1", set.Get(AgentSearchDeploymentID))
}

func TestResolve_ReportsEveryMissingKey(t *testing.T) {
	src := Map{AgentResearchToken: "tok"}

	_, err := Resolve(src, AgentResearchToken, AgentResearchDeploymentID, InferenceAPIKey)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{AgentResearchDeploymentID, InferenceAPIKey}, missing.Keys)
	assert.Contains(t, err.Error(), AgentResearchDeploymentID)
	assert.Contains(t, err.Error(), InferenceAPIKey)
}

func TestResolve_BlankCountsAsMissing(t *testing.T) {
	_, err := Resolve(Map{InferenceAPIKey: "   "}, InferenceAPIKey)

	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{InferenceAPIKey}, missing.Keys)
}

func TestResolve_ErrorNeverContainsValues(t *testing.T) {
	_, err := Resolve(Map{AgentSearchToken: "super-secret"}, AgentSearchToken, AgentSearchDeploymentID)

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
}

func TestEnv_Lookup(t *testing.T) {
	t.Setenv(InferenceAPIKey, "from-env")

	v, ok := Env{}.Lookup(InferenceAPIKey)

	assert.True(t, ok)
	assert.Equal(t, "from-env", v)
}

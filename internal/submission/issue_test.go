package submission_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
	"github.com/meur/dtwiki/internal/submission"
)

func newIssueBuilder(t *testing.T) *submission.IssueBuilder {
	t.Helper()
	b, err := submission.NewIssueBuilder("https://github.com/meur/dtwiki/")
	require.NoError(t, err)
	return b
}

func TestNewIssueBuilderRejectsBadURL(t *testing.T) {
	_, err := submission.NewIssueBuilder("not a url")
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestTeamIssue(t *testing.T) {
	b := newIssueBuilder(t)
	issue, err := b.Team(models.TeamDocument{
		Name:        "Arena",
		Author:      "meur",
		ContentType: models.ContentPvP,
		Members:     []models.TeamMember{{CharacterName: "Thane"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "[Team] Arena", issue.Title)
	assert.Equal(t, []string{"team"}, issue.Labels)
	assert.False(t, issue.Fallback)
	assert.Contains(t, issue.Body, "```json\n"+issue.JSON+"\n```")
	assert.Contains(t, issue.Body, "**Author:** meur")

	u, err := url.Parse(issue.URL)
	require.NoError(t, err)
	assert.Equal(t, "/meur/dtwiki/issues/new", u.Path)
	assert.Equal(t, issue.Body, u.Query().Get("body"))
	assert.Equal(t, len(issue.URL), b.EstimatedSize(issue))
}

func TestTierListIssueDefaultsName(t *testing.T) {
	issue, err := newIssueBuilder(t).TierList(models.TierListDocument{Name: "  "})
	require.NoError(t, err)
	assert.Equal(t, "[Tier List] Untitled", issue.Title)
	assert.Equal(t, []string{"tier-list"}, issue.Labels)
	assert.NotContains(t, issue.Body, "**Author:**")
}

func TestOversizedIssueFallsBackToTemplate(t *testing.T) {
	b := newIssueBuilder(t)
	doc := models.TeamDocument{Name: "Huge", Description: strings.Repeat("long text ", 1000)}

	issue, err := b.Team(doc)
	require.NoError(t, err)
	assert.True(t, issue.Fallback)
	assert.Equal(t, submission.FallbackWarning, issue.Warning)
	assert.Greater(t, b.EstimatedSize(issue), submission.MaxURLLength)
	assert.LessOrEqual(t, len(issue.URL), submission.MaxURLLength)

	u, err := url.Parse(issue.URL)
	require.NoError(t, err)
	assert.Empty(t, u.Query().Get("body"))
	assert.Equal(t, "team.md", u.Query().Get("template"))
	assert.Contains(t, issue.JSON, "long text")
}

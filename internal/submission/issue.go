// Package submission turns builder documents into prefilled suggestion
// issues, and processes submitted issues back into the data files.
package submission

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
	"github.com/meur/dtwiki/internal/models"
)

// MaxURLLength is the longest new-issue URL the tracker accepts. Longer
// submissions fall back to an empty template.
const MaxURLLength = 8000

// FallbackWarning tells the user to paste the JSON by hand
const FallbackWarning = "This submission is too large to prefill. The issue opens with an empty template: copy the JSON below and paste it into the issue body."

// Issue is a ready-to-open suggestion
type Issue struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels"`
	// JSON is the serialized document, kept for manual copying
	JSON string `json:"json"`
	URL  string `json:"url"`
	// Fallback is set when URL opens an empty template instead of Body
	Fallback bool   `json:"fallback"`
	Warning  string `json:"warning,omitempty"`
}

// IssueBuilder builds issues against one repository
type IssueBuilder struct {
	repoURL string
}

// NewIssueBuilder creates a builder for repoURL, e.g. https://github.com/owner/repo
func NewIssueBuilder(repoURL string) (*IssueBuilder, error) {
	u, err := url.Parse(repoURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.InvalidArgumentf("invalid issue repository URL %q", repoURL)
	}
	return &IssueBuilder{repoURL: strings.TrimRight(repoURL, "/")}, nil
}

// Team builds a team suggestion
func (b *IssueBuilder) Team(doc models.TeamDocument) (Issue, error) {
	return b.build(LabelTeam, "Team", doc.Name, doc.Author, doc)
}

// TierList builds a tier-list suggestion
func (b *IssueBuilder) TierList(doc models.TierListDocument) (Issue, error) {
	return b.build(LabelTierList, "Tier List", doc.Name, doc.Author, doc)
}

func (b *IssueBuilder) build(label Label, prefix, name, author string, doc any) (Issue, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Issue{}, errors.Wrap(err, "failed to marshal document")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}

	issue := Issue{
		Title:  fmt.Sprintf("[%s] %s", prefix, name),
		Labels: []string{string(label)},
		JSON:   string(data),
	}
	issue.Body = body(prefix, name, author, issue.JSON)
	issue.URL = b.url(issue.Title, issue.Body, issue.Labels, "")

	if len(issue.URL) > MaxURLLength {
		issue.URL = b.url(issue.Title, "", issue.Labels, string(label)+".md")
		issue.Fallback = true
		issue.Warning = FallbackWarning
	}
	return issue, nil
}

func body(kind, name, author, doc string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s suggestion\n\n", kind)
	fmt.Fprintf(&sb, "**Name:** %s\n", name)
	if author = strings.TrimSpace(author); author != "" {
		fmt.Fprintf(&sb, "**Author:** %s\n", author)
	}
	sb.WriteString("\n```json\n")
	sb.WriteString(doc)
	sb.WriteString("\n```\n")
	return sb.String()
}

func (b *IssueBuilder) url(title, body string, labels []string, template string) string {
	q := url.Values{}
	q.Set("title", title)
	if body != "" {
		q.Set("body", body)
	}
	q.Set("labels", strings.Join(labels, ","))
	if template != "" {
		q.Set("template", template)
	}
	return b.repoURL + "/issues/new?" + q.Encode()
}

// EstimatedSize returns the length of the prefilled URL for an issue
func (b *IssueBuilder) EstimatedSize(issue Issue) int {
	return len(b.url(issue.Title, issue.Body, issue.Labels, ""))
}

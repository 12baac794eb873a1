package wizard

import (
	"testing"

	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/testfixtures"
	"github.com/stretchr/testify/assert"
)

func TestSampleDiff_NoChanges(t *testing.T) {
	unchanged := &session.Result{Rows: testfixtures.PreviewAB().SampleRows}
	assert.Empty(t, sampleDiff(testfixtures.PreviewAB(), unchanged))
}

func TestSampleDiff_Nil(t *testing.T) {
	assert.Empty(t, sampleDiff(nil, testfixtures.ResultHidden()))
	assert.Empty(t, sampleDiff(testfixtures.PreviewEmails(), nil))
}

func TestSampleDiff_Changes(t *testing.T) {
	diff := sampleDiff(testfixtures.PreviewCustomers(2), testfixtures.ResultCustomers(2))

	assert.Contains(t, diff, "--- original")
	assert.Contains(t, diff, "+++ processed")
	assert.Contains(t, diff, "-user0,user0@x.com,0")
	assert.Contains(t, diff, "+user0,HIDDEN,0")
	assert.Contains(t, diff, "-user1,user1@x.com,1")
	assert.Contains(t, diff, " name,email,id")
}

func TestSampleDiff_ComparesOverlapOnly(t *testing.T) {
	// Five sample rows against two processed rows: only two are compared.
	diff := sampleDiff(testfixtures.PreviewCustomers(5), testfixtures.ResultCustomers(2))
	assert.NotContains(t, diff, "user4")
}

func TestHighlightDiff_KeepsText(t *testing.T) {
	diff := sampleDiff(testfixtures.PreviewCustomers(1), testfixtures.ResultCustomers(1))
	out := testfixtures.Plain(highlightDiff(diff))
	assert.Contains(t, out, "-user0,user0@x.com,0")
	assert.Contains(t, out, "+user0,HIDDEN,0")
}

func TestStyleDiffLines_KeepsText(t *testing.T) {
	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n"
	assert.Equal(t, "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new", testfixtures.Plain(styleDiffLines(diff)))
}

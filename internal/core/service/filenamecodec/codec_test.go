package filenamecodec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elnvault/eln-core/internal/core/service/filenamecodec"
)

func TestSubmissionRoundTrip(t *testing.T) {
	ts := time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)
	variables := []string{"P7", "S9"}

	name := filenamecodec.EncodeSubmission(ts, "alice_acme_org", variables, "e_xyz", "json")
	assert.Equal(t, "20250130T120000Z-alice_acme_org-P7-S9-e_xyz.json", name)

	got, err := filenamecodec.DecodeSubmission(name, len(variables))
	require.NoError(t, err)
	assert.Equal(t, ts, got.Timestamp)
	assert.Equal(t, "alice_acme_org", got.RawID)
	assert.Equal(t, variables, got.Variables)
	assert.Equal(t, "e_xyz", got.Tail)
	assert.Equal(t, "json", got.Ext)
}

func TestSubmissionEmptyComponentPreserved(t *testing.T) {
	ts := time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)
	variables := []string{"P7", ""}

	name := filenamecodec.EncodeSubmission(ts, "alice_acme_org", variables, "e_xyz", "json")
	assert.Equal(t, "20250130T120000Z-alice_acme_org-P7--e_xyz.json", name)

	got, err := filenamecodec.DecodeSubmission(name, len(variables))
	require.NoError(t, err)
	assert.Equal(t, []string{"P7", ""}, got.Variables)
}

func TestSubmissionRoundTripArbitrary(t *testing.T) {
	ts := time.Date(2024, 6, 1, 9, 30, 15, 0, time.UTC)
	cases := [][]string{
		{},
		{"a"},
		{"", "", ""},
		{"alpha", "", "beta", ""},
	}
	for _, vars := range cases {
		name := filenamecodec.EncodeSubmission(ts, "user1", vars, "uuid1", "json")
		got, err := filenamecodec.DecodeSubmission(name, len(vars))
		require.NoError(t, err)
		assert.Equal(t, vars, got.Variables)
		assert.Equal(t, ts, got.Timestamp)
		assert.Equal(t, "uuid1", got.Tail)
	}
}

func TestDraftRoundTrip(t *testing.T) {
	ts := time.Date(2025, 1, 30, 12, 0, 0, 0, time.UTC)
	variables := []string{"P7", "S9"}

	name := filenamecodec.EncodeDraft(ts, "bob", variables, "d_abc", "json")
	assert.Equal(t, "draft_20250130T120000Z-bob-P7-S9-d_abc.json", name)

	got, err := filenamecodec.DecodeDraft(name, len(variables))
	require.NoError(t, err)
	assert.True(t, got.IsDraft)
	assert.Equal(t, "d_abc", got.Tail)
}

func TestDelimiterScrubbedInComponents(t *testing.T) {
	ts := time.Now()
	name := filenamecodec.EncodeSubmission(ts, "bob-smith", []string{"a-b"}, "e1", "json")
	assert.NotContains(t, name[:len(name)-len(".json")], "--")
	got, err := filenamecodec.DecodeSubmission(name, 1)
	require.NoError(t, err)
	assert.Equal(t, "bob_smith", got.RawID)
	assert.Equal(t, "a_b", got.Variables[0])
}

func TestStagedFilenameRoundTrip(t *testing.T) {
	name := filenamecodec.EncodeStagedFilename("alice", "field1", "ab12cd34", "report.final.pdf")
	owner, field, temp, orig, err := filenamecodec.DecodeStagedFilename(name)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
	assert.Equal(t, "field1", field)
	assert.Equal(t, "ab12cd34", temp)
	assert.Equal(t, "report.final.pdf", orig)
}

func TestDecodeMalformedFails(t *testing.T) {
	_, err := filenamecodec.DecodeSubmission("not-enough-parts.json", 5)
	assert.Error(t, err)
}

package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shriya-methkupally/metro-2025-clusters/internal/catalog"
)

func TestDefault_GroupsAndPillars(t *testing.T) {
	c := catalog.Default()

	groups := c.Groups()
	require.Len(t, groups, catalog.NumGroups)
	assert.Equal(t, "Small metros", groups[0])
	assert.Equal(t, "Star Hubs", groups[2])

	name, ok := c.GroupName(1)
	require.True(t, ok)
	assert.Equal(t, "AI Superstars", name)
	_, ok = c.GroupName(7)
	assert.False(t, ok)
	_, ok = c.GroupName(-1)
	assert.False(t, ok)

	code, ok := c.GroupCode("Nascent Adopters")
	require.True(t, ok)
	assert.Equal(t, 5, code)

	// AI Job Postings is declared under talent and adoption but tracked once.
	all := c.All()
	n := 0
	for _, m := range all {
		if m == "AI Job Postings" {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.ElementsMatch(t, []string{catalog.PillarTalent, catalog.PillarAdoption}, c.Pillars("AI Job Postings"))

	assert.True(t, c.IsRate("Firm AI Use"))
	assert.False(t, c.IsRate("AI Patents"))
	assert.Equal(t, []string{"AI Talent Share", "AI Patents per 100k", "Firm AI Use", "AI Adoption Rate"}, c.RateLike())
}

func TestPillar(t *testing.T) {
	c := catalog.Default()

	all, err := c.Pillar("")
	require.NoError(t, err)
	assert.Equal(t, c.All(), all)

	inn, err := c.Pillar("Innovation")
	require.NoError(t, err)
	assert.Contains(t, inn, "AI Patents")
	assert.NotContains(t, inn, "Firm AI Use")

	_, err = c.Pillar("governance")
	assert.Error(t, err)
}

func TestNew_Rejects(t *testing.T) {
	cases := map[string]catalog.Declaration{
		"no metrics": {},
		"untracked rate metric": {
			Talent:   []string{"A"},
			RateLike: []string{"B"},
		},
		"too few groups": {
			Talent: []string{"A"},
			Groups: map[int]string{0: "x", 1: "y"},
		},
		"duplicate group name": {
			Talent: []string{"A"},
			Groups: map[int]string{0: "a", 1: "b", 2: "c", 3: "d", 4: "e", 5: "f", 6: "a"},
		},
		"gap in codes": {
			Talent: []string{"A"},
			Groups: map[int]string{0: "a", 1: "b", 2: "c", 3: "d", 4: "e", 5: "f", 7: "g"},
		},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.New(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, catalog.ErrInvalidDeclaration))
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "catalog.yaml")
	content := `talent: [Workers]
innovation: [Patents, Patent Rate]
adoption: [Use Rate]
rate_like: [Patent Rate, Use Rate]
`
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	c, err := catalog.Load(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"Workers", "Patents", "Patent Rate", "Use Rate"}, c.All())
	assert.True(t, c.IsRate("Use Rate"))
	// Omitted groups fall back to the default scheme.
	assert.Equal(t, catalog.DefaultGroups()[6], c.Groups()[6])

	d := c.Declaration()
	assert.Equal(t, []string{"Patent Rate", "Use Rate"}, d.RateLike)
	assert.Len(t, d.Groups, catalog.NumGroups)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	c, err := catalog.Load("")
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().All(), c.All())
}

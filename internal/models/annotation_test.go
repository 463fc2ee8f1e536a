package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecg-annotator/internal/labels"
)

func TestGetRowCreatesDefaults(t *testing.T) {
	t.Parallel()

	table := NewAnnotationTable()
	require.False(t, table.Has("a.jpg"))

	row := table.GetRow("a.jpg")
	assert.Equal(t, AnnotationRow{}, row)
	assert.False(t, row.Seen)
	for _, tag := range labels.All() {
		assert.False(t, row.Has(tag), tag.String())
	}
	assert.True(t, table.Has("a.jpg"), "GetRow must create the row")
	assert.Equal(t, 1, table.Len())
}

func TestSetTagAndMarkSeen(t *testing.T) {
	t.Parallel()

	table := NewAnnotationTable()
	table.SetTag("scan/1.jpg", labels.LowContrast, true)
	table.SetTag("scan/1.jpg", labels.Obscured, true)
	table.SetTag("scan/1.jpg", labels.Obscured, false)

	row := table.GetRow("scan/1.jpg")
	assert.True(t, row.Has(labels.LowContrast))
	assert.False(t, row.Has(labels.Obscured))
	assert.False(t, row.Seen)

	table.MarkSeen("scan/1.jpg")
	table.MarkSeen("scan/1.jpg")
	row = table.GetRow("scan/1.jpg")
	assert.True(t, row.Seen)
	assert.True(t, row.Has(labels.LowContrast), "MarkSeen must not touch tags")

	// invalid tags are ignored rather than corrupting the row
	table.SetTag("scan/1.jpg", labels.Tag(42), true)
	assert.Equal(t, row, table.GetRow("scan/1.jpg"))
}

func TestAnnotatedPathsIgnoresSeen(t *testing.T) {
	t.Parallel()

	table := SeedTable([]string{"a.jpg", "b.jpg", "c.jpg"})
	table.MarkSeen("a.jpg")
	table.SetTag("b.jpg", labels.GoodQuality, true)
	table.SetTag("c.jpg", labels.Unreadable, true)
	table.SetTag("c.jpg", labels.Unreadable, false)

	assert.Equal(t, map[string]struct{}{"b.jpg": {}}, table.AnnotatedPaths())
	assert.Equal(t, []string{"b.jpg"}, table.AnnotatedList())
}

func TestMergeCalleeWins(t *testing.T) {
	t.Parallel()

	memory := NewAnnotationTable()
	memory.SetTag("shared.jpg", labels.GoodQuality, true)

	disk := NewAnnotationTable()
	disk.SetTag("shared.jpg", labels.Unreadable, true)
	disk.SetTag("disk-only.jpg", labels.Obscured, true)
	disk.MarkSeen("disk-only.jpg")

	memory.Merge(disk)

	shared := memory.GetRow("shared.jpg")
	assert.True(t, shared.Has(labels.GoodQuality))
	assert.False(t, shared.Has(labels.Unreadable), "in-memory row must not be overwritten")

	imported, ok := memory.Lookup("disk-only.jpg")
	require.True(t, ok)
	assert.True(t, imported.Has(labels.Obscured))
	assert.True(t, imported.Seen)

	// the argument is left untouched
	assert.Equal(t, 2, disk.Len())
	assert.True(t, disk.GetRow("shared.jpg").Has(labels.Unreadable))
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	table := NewAnnotationTable()
	table.SetTag("a.jpg", labels.Obscured, true)
	table.MarkSeen("b.jpg")
	before := table.Clone()

	table.Merge(table)
	assert.True(t, before.Equal(table))

	table.Merge(before)
	assert.True(t, before.Equal(table))
}

func TestMergeAssociative(t *testing.T) {
	t.Parallel()

	build := func() (*AnnotationTable, *AnnotationTable, *AnnotationTable) {
		a := NewAnnotationTable()
		a.SetTag("1.jpg", labels.Unreadable, true)
		a.SetTag("2.jpg", labels.Obscured, true)

		b := NewAnnotationTable()
		b.SetTag("2.jpg", labels.GoodQuality, true)
		b.SetTag("3.jpg", labels.LowContrast, true)

		c := NewAnnotationTable()
		c.SetTag("3.jpg", labels.SignalsIntersect, true)
		c.MarkSeen("4.jpg")
		c.SetTag("1.jpg", labels.GoodQuality, true)
		return a, b, c
	}

	// merge(merge(A,B),C)
	left, b, c := build()
	left.Merge(b)
	left.Merge(c)

	// merge(A,merge(B,C))
	right, b2, c2 := build()
	b2.Merge(c2)
	right.Merge(b2)

	assert.True(t, left.Equal(right))
	assert.Equal(t, 4, left.Len())
	assert.True(t, left.GetRow("2.jpg").Has(labels.Obscured))
	assert.True(t, left.GetRow("3.jpg").Has(labels.LowContrast))
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	table := NewAnnotationTable()
	table.SetTag("a.jpg", labels.Obscured, true)

	clone := table.Clone()
	clone.SetTag("a.jpg", labels.Obscured, false)

	assert.True(t, table.GetRow("a.jpg").Has(labels.Obscured))
	assert.False(t, table.Equal(clone))
	assert.False(t, table.Equal(nil))
}

func TestDeleteAndPaths(t *testing.T) {
	t.Parallel()

	table := SeedTable([]string{"c.jpg", "a.jpg", "b.jpg"})
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, table.Paths())

	assert.True(t, table.Delete("b.jpg"))
	assert.False(t, table.Delete("b.jpg"))
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, table.Paths())

	var visited []string
	table.Range(func(path string, _ AnnotationRow) {
		visited = append(visited, path)
	})
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, visited)
}

func TestStats(t *testing.T) {
	t.Parallel()

	table := SeedTable([]string{"a.jpg", "b.jpg", "c.jpg"})
	table.SetTag("a.jpg", labels.GoodQuality, true)
	table.SetTag("b.jpg", labels.GoodQuality, true)
	table.SetTag("b.jpg", labels.LowContrast, true)
	table.MarkSeen("a.jpg")
	table.MarkSeen("c.jpg")

	stats := table.Stats()
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 2, stats.Seen)
	assert.Equal(t, 2, stats.Annotated)
	assert.Equal(t, 2, stats.PerTag[labels.GoodQuality])
	assert.Equal(t, 1, stats.PerTag[labels.LowContrast])
	assert.Zero(t, stats.PerTag[labels.Unreadable])
}

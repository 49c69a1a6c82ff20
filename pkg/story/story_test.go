package story_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/commitviz/pkg/commits"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom"
	"github.com/Sumatoshi-tech/commitviz/pkg/dom/htmldoc"
	"github.com/Sumatoshi-tech/commitviz/pkg/loc"
	"github.com/Sumatoshi-tech/commitviz/pkg/story"
)

func history(t *testing.T) []*commits.Commit {
	t.Helper()

	t1 := time.Date(2025, 2, 5, 16, 17, 0, 0, time.UTC)
	t2 := t1.Add(26 * time.Hour)

	cs, err := commits.Aggregate([]loc.LineRecord{
		{Commit: "a", Datetime: t1, File: "index.html", Line: 1},
		{Commit: "a", Datetime: t1, File: "style.css", Line: 1},
		{Commit: "a", Datetime: t1, File: "style.css", Line: 2},
		{Commit: "b", Datetime: t2, File: "index.html", Line: 2},
	})
	require.NoError(t, err)

	return cs
}

func TestSteps_Narrative(t *testing.T) {
	t.Parallel()

	steps := story.Steps(history(t), nil)
	require.Len(t, steps, 2)

	assert.Equal(t,
		"On Wednesday, February 5, 2025 at 4:17 PM, I made my first commit, and it was glorious. "+
			"I edited 3 lines across 2 files. Then I looked over all I had made, and I saw that it was very good.",
		steps[0].Text())
	assert.Equal(t, "another glorious commit", steps[1].LinkText)
	assert.Contains(t, steps[1].Text(), "I edited 1 lines across 1 files.")
}

func TestController_EnterMovesCutoff(t *testing.T) {
	t.Parallel()

	cs := history(t)

	var got []time.Time

	ctrl := story.NewController(story.Steps(cs, nil), func(cutoff time.Time) error {
		got = append(got, cutoff)

		return nil
	})
	assert.Equal(t, -1, ctrl.Current())

	require.NoError(t, ctrl.Enter(1))
	require.NoError(t, ctrl.Enter(0))
	assert.Equal(t, 0, ctrl.Current())
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(cs[1].Datetime))
	assert.True(t, got[1].Equal(cs[0].Datetime))
}

func TestController_OutOfRange(t *testing.T) {
	t.Parallel()

	ctrl := story.NewController(story.Steps(history(t), nil), nil)

	require.ErrorIs(t, ctrl.Enter(2), story.ErrStepOutOfRange)
	require.ErrorIs(t, ctrl.Enter(-1), story.ErrStepOutOfRange)
	assert.Equal(t, -1, ctrl.Current())

	empty := story.NewController(nil, nil)
	require.ErrorIs(t, empty.Enter(0), story.ErrStepOutOfRange)
}

func TestController_SinkErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ctrl := story.NewController(story.Steps(history(t), nil), func(time.Time) error { return boom })

	require.ErrorIs(t, ctrl.Enter(0), boom)
	assert.Equal(t, 0, ctrl.Current())
}

func TestRender(t *testing.T) {
	t.Parallel()

	doc, err := htmldoc.ParseString(`<html><body><div id="scrolly-1"><div id="scatter-story"></div></div></body></html>`)
	require.NoError(t, err)

	cs := history(t)
	story.Render(doc, story.Steps(cs, nil))

	box := doc.ElementByID(story.ContainerID)
	steps := dom.FindAll(box, dom.ByClass(story.StepClass))
	require.Len(t, steps, 2)
	assert.Equal(t, "1", dom.AttrOr(steps[1], "data-step", ""))

	links := dom.FindAll(steps[0], dom.ByTag("a"))
	require.Len(t, links, 1)
	assert.Equal(t, cs[0].URL, dom.AttrOr(links[0], "href", ""))
	assert.Equal(t, "_blank", dom.AttrOr(links[0], "target", ""))
}

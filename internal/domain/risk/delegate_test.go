package risk_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/drivefit/riskd/internal/domain/model"
	"github.com/drivefit/riskd/internal/domain/risk"
)

// fakeGenerator returns a canned response or error and records the prompt.
type fakeGenerator struct {
	output string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.output, g.err
}

func TestDelegateClassifier_Classify(t *testing.T) {
	ctx := context.Background()
	sample := sampleOf(t, `{"hr": [130, "2024-01-01T00:00:00Z"]}`)

	Convey("Given a delegate that answers with a label", t, func() {
		gen := &fakeGenerator{output: "high"}
		c := risk.NewDelegateClassifier(gen)

		label := c.Classify(ctx, sample)

		Convey("Then the label is extracted from the response", func() {
			So(label, ShouldEqual, model.LabelHigh)
		})

		Convey("And the prompt carries the sample vitals", func() {
			So(gen.prompt, ShouldContainSubstring, "- hr: 130 at 2024-01-01T00:00:00Z")
		})
	})

	Convey("Given a delegate that answers with prose", t, func() {
		gen := &fakeGenerator{output: "Based on the vitals, the risk is moderate."}
		c := risk.NewDelegateClassifier(gen)

		So(c.Classify(ctx, sample), ShouldEqual, model.LabelModerate)
	})

	Convey("Given a delegate that answers with unrelated text", t, func() {
		gen := &fakeGenerator{output: "I cannot assess this."}
		c := risk.NewDelegateClassifier(gen)

		So(c.Classify(ctx, sample), ShouldEqual, model.LabelUnknown)
	})

	Convey("Given a delegate call that fails", t, func() {
		gen := &fakeGenerator{err: errors.New("throttled")}
		c := risk.NewDelegateClassifier(gen)

		Convey("Then classification degrades to the error label", func() {
			So(c.Classify(ctx, sample), ShouldEqual, model.LabelError)
		})
	})
}

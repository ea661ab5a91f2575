package risk_test

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/drivefit/riskd/internal/domain/model"
	"github.com/drivefit/riskd/internal/domain/risk"
)

func TestBuildPrompt(t *testing.T) {
	Convey("Given a sample with several metrics", t, func() {
		sample := sampleOf(t, `{"spo2": [97.1, "2024-01-01T00:00:01Z"], "hr": [88, "2024-01-01T00:00:00Z"]}`)

		prompt := risk.BuildPrompt(sample)

		Convey("Then the prompt opens with the rule text", func() {
			So(prompt, ShouldStartWith, "You are a driving fitness risk classifier")
			So(prompt, ShouldContainSubstring, "HIGH RISK if: HR > 120")
		})

		Convey("And every metric renders with its value and timestamp", func() {
			So(prompt, ShouldContainSubstring, "- hr: 88 at 2024-01-01T00:00:00Z\n")
			So(prompt, ShouldContainSubstring, "- spo2: 97.1 at 2024-01-01T00:00:01Z\n")
		})

		Convey("And metrics appear in sorted name order", func() {
			So(strings.Index(prompt, "- hr:"), ShouldBeLessThan, strings.Index(prompt, "- spo2:"))
		})
	})

	Convey("Given an entry without a parseable value", t, func() {
		sample := sampleOf(t, `{"hrv": "low"}`)

		prompt := risk.BuildPrompt(sample)

		Convey("Then it renders as n/a with the unknown timestamp", func() {
			So(prompt, ShouldContainSubstring, "- hrv: n/a at unknown\n")
		})
	})
}

func TestExtractLabel(t *testing.T) {
	Convey("Given delegate output in various shapes", t, func() {
		cases := []struct {
			output string
			want   model.Label
		}{
			{"high", model.LabelHigh},
			{"HIGH", model.LabelHigh},
			{"The risk level is moderate.", model.LabelModerate},
			{"normal risk, nothing to report", model.LabelNormal},
			{"moderate or high, hard to say", model.LabelModerate},
			{"abnormally quiet", model.LabelUnknown},
			{"highway conditions", model.LabelUnknown},
			{"", model.LabelUnknown},
		}

		for _, tc := range cases {
			So(risk.ExtractLabel(tc.output), ShouldEqual, tc.want)
		}
	})
}

package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"

	"github.com/farcloser/salvo/tests/testutils"
)

func TestProcessCLI(t *testing.T) {
	tenClicks := writeWAV(t, "ten.wav", clicks(8800, train(800, 800, 10)...))

	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "process without arguments fails",
			Command:     test.Command("process"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "process nonexistent file fails",
			Command:     test.Command("process", "/nonexistent/path/clip.mp4"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "process extracts through ffmpeg",
			Command:     test.Command("process", tenClicks),
			Expected:    test.Expects(expect.ExitCodeSuccess, nil, expectSummary(10, 1)),
		},
		{
			Description: "process missing stream fails",
			Command:     test.Command("process", "--stream", "3", tenClicks),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "process handles music without failing",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.Genuine16bit44k(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "--environment", "indoor", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectContains("shots"),
				}
			},
		},
	}

	testCase.Run(t)
}

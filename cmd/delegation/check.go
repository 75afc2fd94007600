// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"
)

// checkAction compares the expected delegation pool balance of every delegatee with the
// actual one and prints a unified diff of the two reports on mismatch.
func checkAction(ctx *cli.Context, s *session) error {
	delegatees, err := s.engine.Delegatees()
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, ">> Checking delegation pools <<")
	bar := pb.New64(int64(len(delegatees))).
		Set64(0).
		SetMaxWidth(90)
	bar.Output = ctx.App.Writer
	bar.Start()
	defer func() { bar.NotPrint = true }()

	var expected, actual strings.Builder
	mismatches := 0
	for _, dt := range delegatees {
		want, got, err := s.engine.Check(dt)
		if err != nil {
			return errors.Wrapf(err, "check %v", dt)
		}
		fmt.Fprintf(&expected, "%v %v\n", dt, want)
		fmt.Fprintf(&actual, "%v %v\n", dt, got)
		if want.Cmp(got) != 0 {
			mismatches++
		}
		bar.Add64(1)
	}
	bar.Finish()

	if mismatches == 0 {
		fmt.Fprintf(ctx.App.Writer, "%d delegatees consistent\n", len(delegatees))
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected.String()),
		B:        difflib.SplitLines(actual.String()),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  0,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(ctx.App.Writer, diff)
	return errors.Errorf("%d of %d delegation pools inconsistent", mismatches, len(delegatees))
}

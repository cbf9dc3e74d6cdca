// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

package log

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// The output formats accepted by SetFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var formatters = map[string]func() logrus.Formatter{
	FormatText: func() logrus.Formatter {
		return &logrus.TextFormatter{DisableTimestamp: true, DisableColors: true}
	},
	FormatJSON: func() logrus.Formatter {
		return &logrus.JSONFormatter{DisableTimestamp: true}
	},
}

// SetFormat selects the output format by name.
func SetFormat(name string) error {
	newFormatter, ok := formatters[name]
	if !ok {
		return errors.Newf("unknown log format %q", name)
	}
	logging.mu.Lock()
	defer logging.mu.Unlock()
	logging.mu.logger.SetFormatter(newFormatter())
	return nil
}

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
	"context"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/sirupsen/logrus"
)

// renderArgs formats the message. Unsafe arguments are enclosed in
// redaction markers if redactable is set.
func renderArgs(redactable bool, format string, args []interface{}) string {
	var msg redact.RedactableString
	if format == "" {
		msg = redact.Sprint(args...)
	} else {
		msg = redact.Sprintf(format, args...)
	}
	if redactable {
		return string(msg)
	}
	return msg.StripMarkers()
}

// tagFields returns the context tags as logrus fields.
func tagFields(ctx context.Context) logrus.Fields {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return nil
	}
	fields := make(logrus.Fields, len(tags.Get()))
	for _, t := range tags.Get() {
		fields[t.Key()] = t.ValueStr()
	}
	return fields
}

// addStructured creates a structured log entry and writes it.
func addStructured(ctx context.Context, sev Severity, format string, args []interface{}) {
	logging.mu.Lock()
	defer logging.mu.Unlock()
	msg := renderArgs(logging.mu.redactable, format, args)
	entry := logrus.NewEntry(logging.mu.logger).WithField("severity", sev.String())
	if fields := tagFields(ctx); len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Log(sev.logrusLevel(), msg)
}

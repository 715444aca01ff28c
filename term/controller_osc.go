// Copyright © 2025 Gridterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/controller_osc.go
// Summary: OSC command handling - window title and OSC 8 hyperlinks.
// Usage: Part of the Controller's Handler implementation.

package term

import "bytes"

// OscDispatch routes a complete OSC string, already split on semicolons.
func (c *Controller) OscDispatch(params [][]byte) {
	if len(params) == 0 {
		return
	}
	switch string(params[0]) {
	case "0", "2":
		// Icon name / window title. The title may itself contain
		// semicolons, so rejoin everything after the code.
		c.title = string(bytes.Join(params[1:], []byte{';'}))
		if c.TitleChanged != nil {
			c.TitleChanged(c.title)
		}
	case "8":
		c.handleOSC8(params)
	default:
		debugf("controller: ignoring OSC %s", params[0])
	}
}

// handleOSC8 starts or ends a hyperlink: "OSC 8 ; params ; uri". A
// non-empty uri allocates the next link id and tags all subsequently
// printed cells with it; an empty uri ends the current link. The link
// params field (id=... key/value pairs) is accepted and ignored.
func (c *Controller) handleOSC8(params [][]byte) {
	if len(params) < 3 {
		// No uri field at all: treat like an end-of-link.
		c.style.Link = 0
		return
	}
	// The uri is everything after the second semicolon; uris may contain
	// semicolons themselves.
	uri := string(bytes.Join(params[2:], []byte{';'}))
	if uri == "" {
		c.style.Link = 0
		return
	}
	c.style.Link = c.links.Add(uri)
}

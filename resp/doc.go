// Copyright 2012 Gary Burd
//
// Licensed under the Apache License, Version 2.0 (the "License"): you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

// Package resp implements the Redis Serialization Protocol (RESP v2):
// encoding command argument vectors as multi-bulk requests, and decoding
// replies from an arbitrarily fragmented byte stream.
//
// Encoding
//
// Encode writes a command as a RESP multi-bulk: a "*<n>\r\n" header
// followed by one "$<len>\r\n<bytes>\r\n" bulk string per argument. Inline
// requests are never emitted.
//
// Decoding
//
// Decoder is fed byte slices as they arrive off the wire and resumes
// parsing across calls; it never blocks and never assumes a reply arrives
// whole in one Feed call. Decoder.Next reports each fully buffered
// top-level reply as a flattened list of Reply values: a simple string,
// error, integer or bulk string (nil or populated) is one Reply, and an
// array is its header Reply (nil, or carrying the declared length)
// followed by the Replies of all its elements, nested arrays included.
//
// Output
//
// An Output is a per-command decode target: it is fed the complete
// flattened Reply list of one top-level reply and then reports itself
// complete. Output implementations are resettable so that a
// command can be safely re-encoded and re-decoded after a retry.
package resp

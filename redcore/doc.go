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

// Package redcore is a reliable, reconnecting, asynchronous client core
// for the Redis wire protocol. Applications build Commands, submit them
// to an Endpoint, and await the returned value without blocking the
// goroutine that issued them; a watchdog keeps the underlying
// transport.Channel alive across disconnects and a restorer replays
// AUTH/SELECT/SUBSCRIBE state before handing control back to callers.
//
// redcore deliberately does not build command argument lists, map
// cluster keys to slots, orchestrate Sentinel failover, pool
// connections, or expose a per-command method surface — those are left
// to a higher-level client built on top of an Endpoint.
package redcore

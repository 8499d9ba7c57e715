// Package odds turns a venue name and race number into the current odds
// table of that race.
//
// A request goes through a fixed sequence of stages, each of which ends the
// request on failure:
//
//	service window → venue code → race id and URL → browser scrape → text
//
// The browser itself is abstracted behind Browser and Page so the pipeline
// can run against a headless Chrome (see internal/browser) or a fake in tests.
package odds

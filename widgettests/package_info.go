// Package widgettests contains the Plasma widget smoke tests themselves and their supporting API.
//
// Test harness infrastructure that is not specific to Plasma widgets, such as test contexts,
// suites and result reporting, is in the lower-level framework package, and the automation
// server client is in the webdriver package.
package widgettests

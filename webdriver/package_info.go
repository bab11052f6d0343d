// Package webdriver is a client for the subset of the WebDriver protocol, as spoken by Appium
// and its desktop drivers, that UI smoke tests need: creating a session that launches an
// application, setting the implicit wait, finding elements, and taking screenshots.
//
// Both W3C and legacy JSON Wire Protocol responses are understood.
package webdriver

// Package ics writes calendar events to an iCalendar (.ics) file instead of
// a remote calendar. It implements calendar.Inserter, so an EventAdder backed
// by a Writer runs the full scheduling pipeline without calendar credentials.
package ics

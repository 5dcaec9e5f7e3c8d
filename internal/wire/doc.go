// Package wire implements the line protocol spoken between game clients and
// the cable club server.
//
// A message is one line of UTF-8 text terminated by '\n'. Fields are separated
// by ',' and a backslash escapes the character that follows it, so both ','
// and '\' can appear inside a field:
//
//	find,1.0.0,4660,Red\, the champion,22136,...
//
// Reader pops decoded fields in order. Writer collects fields and serializes
// them with the same escaping.
package wire

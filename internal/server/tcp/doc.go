// Package tcpserver serves the record log over a line-oriented TCP protocol.
//
// Every newline-terminated line a client sends is committed as one record
// and answered with the full store contents. A line of the form
//
//	AESDCHAR_IOCSEEKTO:<index>,<offset>
//
// is not stored; it is answered with the store contents from that byte of
// that record onwards. While serving, a timestamp record is appended on a
// fixed interval.
package tcpserver

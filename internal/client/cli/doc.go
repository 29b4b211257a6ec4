// Package cli implements the interactive terminal client.
//
// The REPL reads one command per line. Signed-out users can register, login,
// start a Google sign-in or paste a token; signed-in users can chat, browse
// and manage their saved chats. Replies are revealed one character at a time;
// Ctrl-C while a reply is revealing skips to the end of it.
package cli

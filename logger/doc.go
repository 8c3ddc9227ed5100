// Package logger provides structured logging for streamgate, built on
// zerolog. Components obtain tagged sub-loggers via WithComponent;
// credentials and tokens must never be logged in full (the transport
// package provides redacted fingerprints for that).
package logger

// Package fuzztests houses Go fuzz harnesses for the function info decoder
// and the argument binder. They guard against panics and check the
// invariants of internal/testkit on every accepted input.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests

// Package devs fetches the developer names shown on the board.
//
// A Fetcher opens one PostgreSQL connection per call, runs
// "SELECT name FROM devs", collects the first column of every row and closes
// the connection on every path. Failures are absorbed into a Result whose Err
// wraps ErrUnavailable; callers decide how to present them. Result.Display
// substitutes the single "DB Error" placeholder.
package devs

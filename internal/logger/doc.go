// Package logger wraps zap to provide:
//   - a global sugared logger with a console encoder,
//   - optional rotation into a log file for the daemon,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Services accept a context and pull the logger out of it, so a name or
// key-value pairs attached once follow every message of that service.
package logger

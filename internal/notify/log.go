package notify

import "log"

// LogSink writes notifications to the standard logger.
type LogSink struct {
	Prefix string
}

func (s LogSink) Info(msg string)    { log.Printf("%s[INFO] %s", s.Prefix, msg) }
func (s LogSink) Success(msg string) { log.Printf("%s[OK] %s", s.Prefix, msg) }
func (s LogSink) Error(msg string)   { log.Printf("%s[ERROR] %s", s.Prefix, msg) }

func (s LogSink) Loading(msg string) Pending {
	log.Printf("%s[...] %s", s.Prefix, msg)
	return s
}

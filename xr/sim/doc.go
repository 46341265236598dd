// Package sim is a simulated XR runtime for running and testing without a headset.
//
// Runtime owns the instance, session and input handles and drives frames on its own
// goroutine. Motion generates device poses from predicted display time; Replay plays
// back YAML pose scripts and can reload them when the file changes.
package sim

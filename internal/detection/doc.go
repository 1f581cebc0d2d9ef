// Package detection runs edge, line and brightness analysis on grayscale frames.
//
// The actual vision work is delegated to a Backend. Two backends exist:
//
//   - "opencv": OpenCV through gocv. Only compiled in with the gocv build tag
//     (go build -tags gocv), since it needs the OpenCV shared libraries.
//   - "pure-go": a cgo-free stand-in that reproduces OpenCV's Canny and
//     standard Hough transform closely enough to give the same lines on
//     synthetic input. Always available.
//
// Backends register themselves by name; Open returns a fresh instance and
// Default names the preferred one for the current build.
//
// # Algorithm Overview
//
// Line detection is a two step pipeline:
//
//  1. Canny edge detection with a low and high hysteresis threshold
//     (defaults 100 and 200) produces a binary edge map.
//  2. The standard Hough transform votes every edge pixel into a
//     (rho, theta) accumulator and returns the cells that beat the
//     vote threshold (default 150) and their four neighbors.
//
// # Line Representation
//
// Lines are returned in Hesse normal form:
//
//	x*cos(theta) + y*sin(theta) = rho
//
// where rho is the signed distance from the top-left origin in pixels and
// theta lies in [0, pi). Lines are ordered by vote count, strongest first.
//
// # Coordinate System
//
// Origin (0, 0) at the top-left pixel, X rightward, Y downward.
package detection

/*
go-rgbdtrack follows a single object through a recorded RGB-D video.

A human marks the object with a bounding box on the colour stream, after which
an OpenCV tracker follows it frame by frame.  When the tracker loses the object
the session pauses and asks the human to select it again.  Each successfully
tracked frame yields an ObjectPosition, optionally lifted into 3D camera
coordinates using the aligned depth stream.

See cmd/rgbdtrack for a command line program using the package.
*/
package rgbdtrack

// Package downscale implements the numeric pipeline that turns a coarse NO2
// raster into a finer one: NaN fill and Gaussian smoothing (Preprocess), the
// four-way resampling core (Resample), and derivation of latitude/longitude
// axes for the resampled grid (ProjectAxes).
//
// "Downscaling" follows the satellite-retrieval convention: it increases
// spatial resolution, which in image-processing terms is upsampling.
//
// Every function here is a pure computation over in-memory grids. The only
// non-total operation is Resample, which distinguishes two failure classes:
// an invalid shape (nil/empty grid, factor below 2) is a hard error, while an
// internal numeric failure is recovered locally and reported through the
// Result's Fallback flag alongside the unmodified input grid.
package downscale

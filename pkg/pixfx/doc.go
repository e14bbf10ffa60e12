// Package pixfx applies per-pixel color transforms to float RGBA buffers.
//
// A transform is gated by an ignore set: any pixel within Params.Threshold
// of an ignored color (RGB distance, alpha excluded) passes through
// unchanged. Every other pixel is remapped by the selected Method:
//
//	GreyScale  r'=g'=b' = (r+g+b)/3 * m
//	Exposure   c' = c * m
//	Tint       c' = c * tint.c * m
//	Inverse    c' = (1 - c) * m
//	Noise      c' = c * U[0, m], one draw per channel
//
// None is a true identity and skips the ignore test. Alpha is never
// modified and no channel is clamped; clamping happens only when
// converting back to an image.Image.
//
// Basic use:
//
//	src := pixfx.FromImage(decoded)
//	p := pixfx.DefaultParams()
//	p.Multiplier = 1.5
//	out, err := pixfx.Transform(src, pixfx.IgnoreSet{pixfx.White}, pixfx.Exposure, p)
//
// Engines split the buffer across workers. Use WithSeed for reproducible
// Noise output at a fixed worker count.
package pixfx

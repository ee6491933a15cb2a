package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Camera is a left-handed perspective camera. With zero pitch and yaw it
// looks down +Z.
type Camera struct {
	// Origin in world space
	Origin math3d.Vec3

	// Orientation (Euler angles in radians)
	Pitch float64 // Rotation around X axis (look up/down)
	Yaw   float64 // Rotation around Y axis (look left/right)

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool
}

// NewCamera creates a camera at (0, 0, -10) looking toward the origin with
// a 60 degree field of view.
func NewCamera() *Camera {
	return &Camera{
		Origin:        math3d.V3(0, 0, -10),
		FOV:           math.Pi / 3,
		AspectRatio:   16.0 / 9.0,
		Near:          0.1,
		Far:           100,
		viewDirty:     true,
		projDirty:     true,
		viewProjDirty: true,
	}
}

// SetOrigin sets the camera position.
func (c *Camera) SetOrigin(pos math3d.Vec3) {
	c.Origin = pos
	c.invalidateView()
}

// SetRotation sets the camera pitch and yaw in radians.
func (c *Camera) SetRotation(pitch, yaw float64) {
	c.Pitch = clampPitch(pitch)
	c.Yaw = yaw
	c.invalidateView()
}

// SetFOV sets the vertical field of view in radians.
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.invalidateProjection()
}

// SetFOVDegrees sets the vertical field of view in degrees.
func (c *Camera) SetFOVDegrees(deg float64) {
	c.SetFOV(deg * math.Pi / 180)
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.invalidateProjection()
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.invalidateProjection()
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math3d.Vec3 {
	return math3d.V3(
		math.Sin(c.Yaw)*math.Cos(c.Pitch),
		math.Sin(c.Pitch),
		math.Cos(c.Yaw)*math.Cos(c.Pitch),
	)
}

// Right returns the right direction vector.
func (c *Camera) Right() math3d.Vec3 {
	return math3d.V3(math.Cos(c.Yaw), 0, -math.Sin(c.Yaw))
}

// Up returns the up direction vector.
func (c *Camera) Up() math3d.Vec3 {
	return c.Forward().Cross(c.Right())
}

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAtLH(c.Origin, c.Origin.Add(c.Forward()), math3d.Up())
		c.viewDirty = false
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.PerspectiveFovLH(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.viewProjDirty {
		c.viewProjMatrix = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

func (c *Camera) invalidateView() {
	c.viewDirty = true
	c.viewProjDirty = true
}

func (c *Camera) invalidateProjection() {
	c.projDirty = true
	c.viewProjDirty = true
}

// MoveForward moves the camera forward (or backward if negative).
func (c *Camera) MoveForward(distance float64) {
	c.SetOrigin(c.Origin.Add(c.Forward().Scale(distance)))
}

// Rotate rotates the camera by the given angles (in radians).
func (c *Camera) Rotate(deltaPitch, deltaYaw float64) {
	c.SetRotation(c.Pitch+deltaPitch, c.Yaw+deltaYaw)
}

// LookAt makes the camera look at a target point.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Origin).Normalize()
	c.SetRotation(math.Asin(dir.Y), math.Atan2(dir.X, dir.Z))
}

// clampPitch keeps the camera off the poles where the up vector
// degenerates.
func clampPitch(p float64) float64 {
	const maxPitch = math.Pi/2 - 0.01
	return math.Max(-maxPitch, math.Min(maxPitch, p))
}

// WorldToScreen transforms a world point to raster coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < 0 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}

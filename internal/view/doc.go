// Package view implements the frame-driving end of a module graph: the
// View3D module, the CallRender3D call it pulls through, and the title and
// camera components it is composed of.
//
// Renderers do not produce pixels. They fill DrawStats on the render call,
// which the view returns as its FrameResult.
package view

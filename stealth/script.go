package stealth

import (
	"fmt"
	"strings"
)

// patchTemplate is injected before any page script runs, after go-rod/
// stealth's own stealth.JS. go-rod/stealth covers the baseline webdriver/
// chrome-object masking that the upstream puppeteer-extra-stealth plugin
// provides; this template adds the profile-specific values spec requires
// (platform, hardwareConcurrency, deviceMemory, languages, WebGL vendor)
// and the permissions/plugins/mimeTypes shims. Every patch is wrapped so a
// non-configurable property never throws — it is skipped instead.
const patchTemplate = `(() => {
  const define = (obj, prop, value) => {
    try {
      Object.defineProperty(obj, prop, { get: () => value, configurable: true });
    } catch (e) { /* already non-configurable: leave as-is */ }
  };

  try { define(navigator, 'webdriver', undefined); } catch (e) {}
  define(navigator, 'platform', %s);
  define(navigator, 'hardwareConcurrency', %d);
  define(navigator, 'deviceMemory', %d);
  define(navigator, 'languages', Object.freeze([%s]));

  if (!window.chrome) {
    window.chrome = { runtime: {}, loadTimes: function(){}, csi: function(){}, app: {} };
  }

  const fakePlugin = (name, desc, filename) => ({
    name, description: desc, filename,
    length: 1,
    item: () => null,
    namedItem: () => null,
  });
  const pluginsArr = [
    fakePlugin('PDF Viewer', 'Portable Document Format', 'internal-pdf-viewer'),
    fakePlugin('Chrome PDF Viewer', 'Portable Document Format', 'internal-pdf-viewer'),
    fakePlugin('Native Client', '', 'internal-nacl-plugin'),
  ];
  pluginsArr.item = (i) => pluginsArr[i] || null;
  pluginsArr.namedItem = (n) => pluginsArr.find(p => p.name === n) || null;
  pluginsArr.refresh = () => {};
  define(navigator, 'plugins', pluginsArr);

  const mimeArr = [];
  mimeArr.item = (i) => mimeArr[i] || null;
  mimeArr.namedItem = (n) => null;
  define(navigator, 'mimeTypes', mimeArr);

  if (navigator.permissions && navigator.permissions.query) {
    const originalQuery = navigator.permissions.query.bind(navigator.permissions);
    navigator.permissions.query = (params) => {
      if (params && params.name === 'notifications') {
        return Promise.resolve({ state: Notification.permission, onchange: null });
      }
      return originalQuery(params);
    };
  }

  const patchWebGL = (proto) => {
    if (!proto || !proto.getParameter) return;
    const original = proto.getParameter;
    proto.getParameter = function (param) {
      if (param === 37445) return %s; // UNMASKED_VENDOR_WEBGL
      if (param === 37446) return %s; // UNMASKED_RENDERER_WEBGL
      return original.apply(this, arguments);
    };
  };
  try { patchWebGL(WebGLRenderingContext.prototype); } catch (e) {}
  try { patchWebGL(WebGL2RenderingContext.prototype); } catch (e) {}

  const patchIframeChrome = () => {
    try {
      const desc = Object.getOwnPropertyDescriptor(HTMLIFrameElement.prototype, 'contentWindow');
      Object.defineProperty(HTMLIFrameElement.prototype, 'contentWindow', {
        get() {
          const win = desc.get.call(this);
          if (win && !win.chrome) { win.chrome = window.chrome; }
          return win;
        },
      });
    } catch (e) {}
  };
  patchIframeChrome();
})();`

// jsString renders a Go string as a double-quoted JS string literal.
func jsString(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// PatchScript renders the DOM-patching script for the given profile. It is
// idempotent and safe to evaluate on every navigation in every frame.
func PatchScript(p Profile) string {
	vendor, renderer := WebGLVendor()
	languages := jsString(p.Locale) + ", " + jsString("en")

	return fmt.Sprintf(
		patchTemplate,
		jsString(p.Platform),
		HardwareConcurrency(),
		DeviceMemory(),
		languages,
		jsString(vendor),
		jsString(renderer),
	)
}
